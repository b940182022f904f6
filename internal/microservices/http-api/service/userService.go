package service

import (
	"errors"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	GetByID(id string) (*models.User, error)
	SetIdentityVerified(id string, verified bool) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetIdentityVerified flips the profile badge after an identity check. This
// only affects the profile-level badge; approved per-review proofs still win
// at render time.
func (s *userService) SetIdentityVerified(id string, verified bool) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if verified {
		user.MainBadge = models.MainBadgeVerified
	} else {
		user.MainBadge = models.MainBadgeUnverified
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
