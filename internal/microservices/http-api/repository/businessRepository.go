package repository

import (
	"context"
	"fmt"
	"strings"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type BusinessRepository interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Business, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Business, error)
	GetBySlug(ctx context.Context, slug string) (*models.Business, error)
	Create(ctx context.Context, b *models.Business) error
	Update(ctx context.Context, id int64, b *models.Business) error
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, query string) ([]models.Business, error)
	UpdateStats(ctx context.Context, id int64, averageRating float64, reviewCount int) error
}

type BusinessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &BusinessRepo{db: db}
}

func (r *BusinessRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Business, int64, error) {
	var list []models.Business
	var total int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&models.Business{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Calculate offset
	offset := (page - 1) * pageSize

	// Fetch paginated results
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id int64) (*models.Business, error) {
	var b models.Business
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepo) GetBySlug(ctx context.Context, slug string) (*models.Business, error) {
	var b models.Business
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepo) Create(ctx context.Context, b *models.Business) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	// GORM will populate b.ID and b.CreatedAt
	return nil
}

func (r *BusinessRepo) Update(ctx context.Context, id int64, b *models.Business) error {
	// ensure ID set for Save
	b.ID = id
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	return nil
}

func (r *BusinessRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Business{}, id).Error; err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	return nil
}

// SearchByName performs case-insensitive partial match on name, category and city.
// Splits query into tokens and requires each token to appear in at least one of the fields.
// Example: "thai bakery austin" -> WHERE (name ILIKE '%thai%' OR ...) AND (name ILIKE '%bakery%' OR ...) ...
func (r *BusinessRepo) SearchByName(ctx context.Context, query string) ([]models.Business, error) {
	var list []models.Business
	tokens := strings.Fields(query)
	db := r.db.WithContext(ctx)

	// if empty tokens, return empty list
	if len(tokens) == 0 {
		return list, nil
	}

	clauses := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)*3)
	for _, t := range tokens {
		p := "%" + t + "%"
		// use COALESCE to avoid NULL category/city causing ILIKE failure
		clauses = append(clauses, "(name ILIKE ? OR COALESCE(category,'') ILIKE ? OR COALESCE(city,'') ILIKE ?)")
		args = append(args, p, p, p)
	}

	where := strings.Join(clauses, " AND ")
	if err := db.Where(where, args...).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search business by name: %w", err)
	}
	return list, nil
}

// UpdateStats writes the denormalized listing stats computed by the chain
// aggregator. Nothing else may touch these two columns.
func (r *BusinessRepo) UpdateStats(ctx context.Context, id int64, averageRating float64, reviewCount int) error {
	err := r.db.WithContext(ctx).Model(&models.Business{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": averageRating,
			"review_count":   reviewCount,
		}).Error
	if err != nil {
		return fmt.Errorf("update business stats: %w", err)
	}
	return nil
}
