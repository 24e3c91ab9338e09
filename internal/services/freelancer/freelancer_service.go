package freelancer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/event"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
)

var (
	ErrAlreadyFreelancer  = errors.New("akun sudah terdaftar sebagai freelancer")
	ErrUserInactive       = errors.New("akun tidak aktif")
	ErrApplicationBlocked = errors.New("pengajuan freelancer ditolak admin")
)

// FreelancerService is the persistence side of onboarding: it seeds drafts
// from existing profiles, grants the freelancer role and reloads identities.
type FreelancerService struct {
	DB     *gorm.DB
	Events event.Publisher
}

func NewFreelancerService(db *gorm.DB, events event.Publisher) *FreelancerService {
	return &FreelancerService{DB: db, Events: events}
}

func freelancerTypeFor(a onboarding.Availability) models.FreelancerType {
	switch a {
	case onboarding.AvailabilityFullTime:
		return models.FreelancerFullTime
	case onboarding.AvailabilityPartTime:
		return models.FreelancerPartTime
	default:
		return models.FreelancerProject
	}
}

func findOrNewProfile(tx *gorm.DB, userID uuid.UUID) (models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	err := tx.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.FreelancerProfile{
			UserID:           userID,
			OnboardingStep:   1,
			OnboardingStatus: models.StatusDraft,
		}, nil
	}
	return p, err
}

// ApplyAsFreelancer stores the application on the candidate's profile and
// switches the user's role to freelancer in one transaction.
func (s *FreelancerService) ApplyAsFreelancer(ctx context.Context, id onboarding.Identity, app onboarding.Application) error {
	skills, err := json.Marshal(app.Skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	education, err := json.Marshal(app.Education)
	if err != nil {
		return fmt.Errorf("encode education: %w", err)
	}
	certifications, err := json.Marshal(app.Certifications)
	if err != nil {
		return fmt.Errorf("encode certifications: %w", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id.UserID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if !u.IsActive {
			return ErrUserInactive
		}

		p, err := findOrNewProfile(tx, u.ID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		switch p.OnboardingStatus {
		case models.StatusApproved:
			return ErrAlreadyFreelancer
		case models.StatusRejected:
			return ErrApplicationBlocked
		}

		now := time.Now()
		if p.SystemName == "" {
			p.SystemName = u.Name
		}
		p.Skills = datatypes.JSON(skills)
		p.About = app.Bio
		p.Education = datatypes.JSON(education)
		p.Certifications = datatypes.JSON(certifications)
		p.Availability = string(app.Availability)
		p.FreelancerType = freelancerTypeFor(app.Availability)
		p.WorkingHours = app.WorkingHours
		p.PortfolioLink = app.PortfolioLink
		p.TermsAcceptedAt = &now
		p.QualityAcceptedAt = &now
		p.ContactEmail = strings.ToLower(strings.TrimSpace(u.Email))
		p.OnboardingStep = onboarding.TotalSteps
		p.OnboardingStatus = models.StatusApproved

		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", u.ID).
			Update("role", models.RoleFreelancer).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.Events != nil {
		ev := event.New(event.FreelancerApplied, id.UserID, map[string]any{
			"skills":       app.Skills,
			"availability": app.Availability,
		})
		if err := s.Events.Publish(ctx, ev); err != nil {
			log.Printf("[Freelancer] publish %s for %s: %v", ev.EventType, id.UserID, err)
		}
	}
	return nil
}

// RefreshIdentity reloads the user so callers can re-issue a token with the
// current role.
func (s *FreelancerService) RefreshIdentity(ctx context.Context, userID uuid.UUID) (onboarding.Identity, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return onboarding.Identity{}, fmt.Errorf("load user: %w", err)
	}
	return onboarding.Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
	}, nil
}

// SeedDraft starts a draft from an existing partial profile. Only the bio is
// carried over.
func (s *FreelancerService) SeedDraft(ctx context.Context, userID uuid.UUID) (onboarding.Draft, error) {
	var p models.FreelancerProfile
	err := s.DB.WithContext(ctx).Select("about").Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return onboarding.Draft{}, nil
	}
	if err != nil {
		return onboarding.Draft{}, fmt.Errorf("load profile: %w", err)
	}
	return onboarding.Draft{Bio: p.About}, nil
}

// Profile returns the approved profile of a freelancer.
func (s *FreelancerService) Profile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
