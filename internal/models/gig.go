package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GigStatus string

const (
	GigDraft     GigStatus = "draft"
	GigReview    GigStatus = "review"
	GigPublished GigStatus = "published"
)

type Gig struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"` // kosong untuk gig hasil seed
	Slug   string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`

	Title     string `gorm:"not null" json:"title"`
	Category  string `gorm:"type:varchar(80);index" json:"category"` // Skripsi, Makalah, Desain, dll
	BasePrice int64  `json:"base_price"`
	CoverURL  string `json:"cover_url"`

	// { basic: {...}, standard: {...}, premium: {...} }
	Packages datatypes.JSON `json:"packages"`

	Status GigStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
