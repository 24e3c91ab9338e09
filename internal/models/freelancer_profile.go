// internal/models/freelancer_profile.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FreelancerType string

const (
	FreelancerFullTime FreelancerType = "full_time"
	FreelancerPartTime FreelancerType = "part_time"
	FreelancerProject  FreelancerType = "project_based"
)

type OnboardingStatus string

const (
	StatusDraft    OnboardingStatus = "draft"
	StatusApproved OnboardingStatus = "approved"
	StatusRejected OnboardingStatus = "rejected" // blocked by an admin, cannot reapply
)

type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	OnboardingStep   int              `gorm:"not null;default:1" json:"onboarding_step"` // 1..4
	OnboardingStatus OnboardingStatus `gorm:"type:varchar(30);not null;default:'draft'" json:"onboarding_status"`

	SystemName string `gorm:"type:varchar(120)" json:"system_name"`
	PhotoURL   string `gorm:"type:text" json:"photo_url"`

	// Step 1 - skills & bio
	Skills datatypes.JSON `json:"skills"` // ["go", "figma", ...]
	About  string         `gorm:"type:text" json:"about"`

	// Step 2 - background
	Education      datatypes.JSON `json:"education"`
	Certifications datatypes.JSON `json:"certifications"`

	// Step 3 - availability
	FreelancerType FreelancerType `gorm:"type:varchar(30)" json:"freelancer_type"`
	Availability   string         `gorm:"type:varchar(30)" json:"availability"`
	WorkingHours   string         `gorm:"type:varchar(120)" json:"working_hours"`
	PortfolioLink  string         `gorm:"type:text" json:"portfolio_link"`

	// Step 4 - agreements
	TermsAcceptedAt   *time.Time `json:"terms_accepted_at"`
	QualityAcceptedAt *time.Time `json:"quality_accepted_at"`

	ContactEmail string `gorm:"type:varchar(150)" json:"contact_email"` // otomatis dari email user

	Balance int64 `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *FreelancerProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
