package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"reviewhub/internal/cache"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/reviewchain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessService interface {
	GetAll(ctx context.Context, page, pageSize int) (*dto.PaginatedBusinessResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.BusinessResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.BusinessResponse, error)
	Create(ctx context.Context, ownerID string, req *dto.CreateBusinessDTO) (*dto.BusinessResponse, error)
	Update(ctx context.Context, id int64, userID string, isAdmin bool, req *dto.UpdateBusinessDTO) (*dto.BusinessResponse, error)
	Delete(ctx context.Context, id int64, userID string, isAdmin bool) error
	SearchByName(ctx context.Context, query string) ([]dto.BusinessResponse, error)
	GetStats(ctx context.Context, id int64) (*reviewchain.Stats, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
	statsCache   *cache.StatsCache
	logger       *slog.Logger
}

func NewBusinessService(
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	statsCache *cache.StatsCache,
	logger *slog.Logger,
) BusinessService {
	return &businessService{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		statsCache:   statsCache,
		logger:       logger,
	}
}

func (s *businessService) GetAll(ctx context.Context, page, pageSize int) (*dto.PaginatedBusinessResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	list, total, err := s.businessRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.BusinessResponse, 0, len(list))
	for i := range list {
		data = append(data, *dto.FromModelToBusinessResponse(&list[i]))
	}
	return dto.NewPaginatedBusinessResponse(data, int(total), page, pageSize), nil
}

func (s *businessService) GetByID(ctx context.Context, id int64) (*dto.BusinessResponse, error) {
	b, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return dto.FromModelToBusinessResponse(b), nil
}

func (s *businessService) GetBySlug(ctx context.Context, slug string) (*dto.BusinessResponse, error) {
	b, err := s.businessRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return dto.FromModelToBusinessResponse(b), nil
}

func (s *businessService) Create(ctx context.Context, ownerID string, req *dto.CreateBusinessDTO) (*dto.BusinessResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}

	b := &models.Business{
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Description: req.Description,
		City:        req.City,
		Website:     req.Website,
		Slug:        req.Slug,
	}
	if ownerID != "" {
		b.OwnerID = &ownerID
	}

	// ensure slug exists, generate from name if missing
	if b.Slug == nil || strings.TrimSpace(*b.Slug) == "" {
		slug := generateSlug(b.Name)
		// add short uuid suffix to avoid collisions
		slug = fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
		b.Slug = &slug
	}

	if err := s.businessRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	return dto.FromModelToBusinessResponse(b), nil
}

func (s *businessService) Update(ctx context.Context, id int64, userID string, isAdmin bool, req *dto.UpdateBusinessDTO) (*dto.BusinessResponse, error) {
	existing, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	if !isAdmin && (existing.OwnerID == nil || *existing.OwnerID != userID) {
		return nil, ErrNotBusinessOwner
	}

	// Apply fields that are non-nil in req to existing
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		existing.Category = req.Category
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.City != nil {
		existing.City = req.City
	}
	if req.Website != nil {
		existing.Website = req.Website
	}

	if err := s.businessRepo.Update(ctx, id, existing); err != nil {
		return nil, err
	}
	return dto.FromModelToBusinessResponse(existing), nil
}

func (s *businessService) Delete(ctx context.Context, id int64, userID string, isAdmin bool) error {
	existing, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBusinessNotFound
		}
		return err
	}
	if !isAdmin && (existing.OwnerID == nil || *existing.OwnerID != userID) {
		return ErrNotBusinessOwner
	}
	return s.businessRepo.Delete(ctx, id)
}

func (s *businessService) SearchByName(ctx context.Context, query string) ([]dto.BusinessResponse, error) {
	list, err := s.businessRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, err
	}
	data := make([]dto.BusinessResponse, 0, len(list))
	for i := range list {
		data = append(data, *dto.FromModelToBusinessResponse(&list[i]))
	}
	return data, nil
}

// GetStats serves the listing stats cache-aside: Redis first, otherwise
// rebuild from the chains and repopulate. The cache entry is invalidated on
// every review write, so a hit is never staler than the last write.
func (s *businessService) GetStats(ctx context.Context, id int64) (*reviewchain.Stats, error) {
	if _, err := s.businessRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if cached, err := s.statsCache.GetStats(ctx, id); err != nil {
		s.logger.Warn("stats cache read failed", "business_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	rows, err := s.reviewRepo.GetByBusiness(id)
	if err != nil {
		return nil, err
	}
	chains, _ := reviewchain.BuildChains(rows)
	stats := reviewchain.Aggregate(chains)

	if err := s.statsCache.SetStats(ctx, id, stats); err != nil {
		s.logger.Warn("stats cache write failed", "business_id", id, "error", err)
	}
	return &stats, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9-]+`)

func generateSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	// replace spaces with dash
	s = strings.ReplaceAll(s, " ", "-")
	// remove non-alnum/dash
	s = nonAlnum.ReplaceAllString(s, "")
	// collapse dashes
	s = strings.ReplaceAll(s, "--", "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "business"
	}
	// limit length
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
