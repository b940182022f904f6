package models

import "time"

type Business struct {
	ID          int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug        *string  `json:"slug,omitempty" gorm:"uniqueIndex;size:200"`
	Name        string   `json:"name" gorm:"not null"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	City        *string  `json:"city,omitempty"`
	Website     *string  `json:"website,omitempty"`
	OwnerID     *string  `json:"owner_id,omitempty" gorm:"type:uuid;index"` // user who claimed the listing, may respond to reviews

	// Denormalized listing stats. Written only from reviewchain.Aggregate after a
	// review write; directory cards read these instead of recounting rows.
	AverageRating *float64 `json:"average_rating,omitempty" gorm:"type:decimal(2,1)"`
	ReviewCount   int      `json:"review_count" gorm:"default:0"`

	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Business) TableName() string {
	return "businesses"
}
