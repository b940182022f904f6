package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review rows are append-only: after the one-minute edit window closes a row is
// never altered by its author again. Follow-ups are appended as new rows that
// point back at the original through ParentReviewID, so a user's full history
// for a business forms a flat chain: one original plus N dated updates.
type Review struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string `gorm:"type:uuid;not null;index:idx_reviews_user_business" json:"user_id"`
	BusinessID int64  `gorm:"not null;index:idx_reviews_user_business;index" json:"business_id"`

	// Nil for an original review. Updates carry the original's ID, never another
	// update's (depth-1 tree).
	ParentReviewID *string `gorm:"type:uuid;index;uniqueIndex:idx_reviews_chain_update" json:"parent_review_id,omitempty"`
	// Set only on updates, starts at 1, unique within a chain. Assigned
	// server-side at write time (see ReviewService.AppendUpdate); the unique
	// index is what loses the race for a concurrent second writer.
	UpdateNumber *int `gorm:"uniqueIndex:idx_reviews_chain_update" json:"update_number,omitempty"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Content string `gorm:"type:text;not null" json:"content"`

	// Proof-of-experience fields. Submission happens through an external upload
	// flow; moderation writes the outcome back here.
	IsProofSubmitted      bool    `gorm:"default:false" json:"is_proof_submitted"`
	ProofVerified         *bool   `json:"proof_verified,omitempty"` // nil = pending moderation
	CustomVerificationTag *string `gorm:"size:100" json:"custom_verification_tag,omitempty"`

	// Set by the business side only, never by the author.
	BusinessResponse   *string    `gorm:"type:text" json:"business_response,omitempty"`
	BusinessResponseAt *time.Time `json:"business_response_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	// Equals CreatedAt until the one allowed in-place edit happens.
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Business Business `json:"business,omitempty" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE;"`
}

// BeforeCreate hook to set UUID before creating a Review
func (review *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	return
}

// IsOriginal reports whether this row starts a chain.
func (r *Review) IsOriginal() bool {
	return r.ParentReviewID == nil
}

func (Review) TableName() string {
	return "reviews"
}
