package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CreateBusinessDTO for registering a business listing
type CreateBusinessDTO struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	City        *string `json:"city,omitempty"`
	Website     *string `json:"website,omitempty"`
	Slug        *string `json:"slug,omitempty"`
}

// UpdateBusinessDTO for editing a listing (all fields optional)
type UpdateBusinessDTO struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	City        *string `json:"city,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// BusinessResponse for directory cards and detail pages. AverageRating and
// ReviewCount always come from the chain aggregator, one entry per reviewer.
type BusinessResponse struct {
	ID            int64      `json:"id"`
	Slug          *string    `json:"slug,omitempty"`
	Name          string     `json:"name"`
	Category      *string    `json:"category,omitempty"`
	Description   *string    `json:"description,omitempty"`
	City          *string    `json:"city,omitempty"`
	Website       *string    `json:"website,omitempty"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// FromModelToBusinessResponse converts a Business model to BusinessResponse DTO
func FromModelToBusinessResponse(b *models.Business) *BusinessResponse {
	avg := 0.0
	if b.AverageRating != nil {
		avg = *b.AverageRating
	}
	return &BusinessResponse{
		ID:            b.ID,
		Slug:          b.Slug,
		Name:          b.Name,
		Category:      b.Category,
		Description:   b.Description,
		City:          b.City,
		Website:       b.Website,
		AverageRating: avg,
		ReviewCount:   b.ReviewCount,
		CreatedAt:     b.CreatedAt,
	}
}

// PaginatedBusinessResponse for the directory listing
type PaginatedBusinessResponse struct {
	Data       []BusinessResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// NewPaginatedBusinessResponse creates a paginated business response
func NewPaginatedBusinessResponse(data []BusinessResponse, total, page, pageSize int) *PaginatedBusinessResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedBusinessResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
