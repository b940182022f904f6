package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/reviewchain"
)

// CreateReviewDTO for submitting the original review of a chain
type CreateReviewDTO struct {
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Content        string `json:"content" binding:"required,min=1,max=5000"`
	ProofSubmitted bool   `json:"proof_submitted"`
}

// AppendUpdateDTO for appending a dated update to an existing chain
type AppendUpdateDTO struct {
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Content        string `json:"content" binding:"required,min=1,max=5000"`
	ProofSubmitted bool   `json:"proof_submitted"`
}

// EditReviewDTO for the one-time in-place edit within the grace window.
// Both fields optional so a typo fix doesn't have to restate the rating.
type EditReviewDTO struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Content *string `json:"content,omitempty" binding:"omitempty,min=1,max=5000"`
}

// RespondReviewDTO for the business-side reply to a review
type RespondReviewDTO struct {
	Response string `json:"response" binding:"required,min=1,max=5000"`
}

// ProofDecisionDTO carries the moderation outcome for a submitted proof
type ProofDecisionDTO struct {
	Verified bool    `json:"verified"`
	Tag      *string `json:"tag,omitempty"` // e.g. "Verified Employee", required when verified
}

// ReviewResponse is the rendered current version of one chain, with the
// resolved badge and the viewer-specific edit flags.
type ReviewResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	BusinessID     int64   `json:"business_id"`
	ParentReviewID *string `json:"parent_review_id,omitempty"`
	UpdateNumber   *int    `json:"update_number,omitempty"`
	Rating         int     `json:"rating"`
	Content        string  `json:"content"`

	Badge reviewchain.Badge `json:"badge"`

	BusinessResponse   *string    `json:"business_response,omitempty"`
	BusinessResponseAt *time.Time `json:"business_response_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Edited    bool      `json:"edited"`       // the one in-place edit happened
	UpdateCount int     `json:"update_count"` // appended updates in the chain

	CanEdit           bool `json:"can_edit"`
	EditWindowExpired bool `json:"edit_window_expired"` // show the why-not message
}

// FromModelToReviewResponse converts a Review model plus its derived display
// state to a ReviewResponse DTO
func FromModelToReviewResponse(r *models.Review, badge reviewchain.Badge, updateCount int, canEdit, editNotice bool) *ReviewResponse {
	return &ReviewResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		Username:           r.User.Username,
		BusinessID:         r.BusinessID,
		ParentReviewID:     r.ParentReviewID,
		UpdateNumber:       r.UpdateNumber,
		Rating:             r.Rating,
		Content:            r.Content,
		Badge:              badge,
		BusinessResponse:   r.BusinessResponse,
		BusinessResponseAt: r.BusinessResponseAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Edited:             !r.UpdatedAt.Equal(r.CreatedAt),
		UpdateCount:        updateCount,
		CanEdit:            canEdit,
		EditWindowExpired:  editNotice,
	}
}

// PaginatedReviewResponse for a business's review listing: one entry per
// reviewer (chains collapsed to current versions) plus the aggregate stats.
type PaginatedReviewResponse struct {
	Data       []ReviewResponse  `json:"data"`
	Stats      reviewchain.Stats `json:"stats"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// NewPaginatedReviewResponse creates a paginated review response
func NewPaginatedReviewResponse(data []ReviewResponse, stats reviewchain.Stats, total, page, pageSize int) *PaginatedReviewResponse {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedReviewResponse{
		Data:       data,
		Stats:      stats,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ReviewVersionResponse is one entry in a chain's history panel
type ReviewVersionResponse struct {
	ID           string    `json:"id"`
	UpdateNumber *int      `json:"update_number,omitempty"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Edited       bool      `json:"edited"`
}

// ReviewHistoryResponse is one user's full chain for a business,
// chronological order
type ReviewHistoryResponse struct {
	UserID     string                  `json:"user_id"`
	Username   string                  `json:"username"`
	BusinessID int64                   `json:"business_id"`
	Versions   []ReviewVersionResponse `json:"versions"`
}
