package repository

import (
	"errors"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	Save(review *models.Review) error
	GetByID(id string) (*models.Review, error)
	GetByBusiness(businessID int64) ([]models.Review, error)
	GetByUserAndBusiness(userID string, businessID int64) ([]models.Review, error)
	GetOriginal(userID string, businessID int64) (*models.Review, error)
	CreateUpdate(update *models.Review) error
	SetBusinessResponse(review *models.Review) error
	SetProofDecision(review *models.Review) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts an original review row
func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Save writes back an edited row (in-place edit within the window)
func (r *reviewRepository) Save(review *models.Review) error {
	return r.db.Save(review).Error
}

func (r *reviewRepository) GetByID(id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.Where("id = ?", id).Preload("User").First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByBusiness retrieves every review row for a business, originals and
// updates alike. Chain grouping and ordering happen in reviewchain, not here.
func (r *reviewRepository) GetByBusiness(businessID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("business_id = ?", businessID).
		Preload("User").
		Order("created_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetByUserAndBusiness retrieves one user's full chain rows for a business
func (r *reviewRepository) GetByUserAndBusiness(userID string, businessID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Where("user_id = ? AND business_id = ?", userID, businessID).
		Preload("User").
		Order("created_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetOriginal retrieves the chain-starting row for a (user, business) pair
func (r *reviewRepository) GetOriginal(userID string, businessID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("user_id = ? AND business_id = ? AND parent_review_id IS NULL", userID, businessID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// CreateUpdate assigns the next update number and inserts the update row in
// one transaction. The number is always computed here, server-side, as
// max(existing)+1; two concurrent appends to the same chain both compute the
// same number and the unique index rejects the loser (see IsUniqueViolation,
// the service retries once).
func (r *reviewRepository) CreateUpdate(update *models.Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		err := tx.Model(&models.Review{}).
			Select("COALESCE(MAX(update_number), 0)").
			Where("parent_review_id = ?", update.ParentReviewID).
			Scan(&maxNumber).Error
		if err != nil {
			return err
		}

		next := maxNumber + 1
		update.UpdateNumber = &next
		return tx.Create(update).Error
	})
}

// SetBusinessResponse writes only the response columns. UpdateColumns keeps
// gorm's auto-timestamping away from updated_at: that column encodes whether
// the author spent their one in-place edit, and an owner reply must not
// consume it.
func (r *reviewRepository) SetBusinessResponse(review *models.Review) error {
	return r.db.Model(review).UpdateColumns(map[string]interface{}{
		"business_response":    review.BusinessResponse,
		"business_response_at": review.BusinessResponseAt,
	}).Error
}

// SetProofDecision writes only the moderation-outcome columns, leaving
// updated_at untouched for the same reason as SetBusinessResponse.
func (r *reviewRepository) SetProofDecision(review *models.Review) error {
	return r.db.Model(review).UpdateColumns(map[string]interface{}{
		"proof_verified":          review.ProofVerified,
		"custom_verification_tag": review.CustomVerificationTag,
	}).Error
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation (code 23505), the signature of a lost update-number race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
