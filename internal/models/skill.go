package models

import "time"

// Skill is one entry of the suggestion catalog shown on the first onboarding step.
type Skill struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Slug     string `gorm:"type:varchar(80);uniqueIndex;not null" json:"id"`
	Name     string `gorm:"type:varchar(120);not null" json:"name"`
	Category string `gorm:"type:varchar(80);index" json:"category"`

	CreatedAt time.Time `json:"created_at"`
}
