package onboarding

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// GrantedRole is the role a successful submission grants.
const GrantedRole = "freelancer"

// Identity is the authenticated candidate as seen by the wizard.
type Identity struct {
	UserID uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// Application is the payload handed to the Gateway: the finished draft with
// whitespace trimmed, duplicate skills dropped and untouched rows removed.
type Application struct {
	Skills                  []string        `json:"skills"`
	Bio                     string          `json:"bio"`
	Education               []Education     `json:"education"`
	Certifications          []Certification `json:"certifications"`
	PortfolioLink           string          `json:"portfolio_link"`
	Availability            Availability    `json:"availability"`
	WorkingHours            string          `json:"working_hours"`
	AgreeToFreelancerTerms  bool            `json:"agree_to_freelancer_terms"`
	AgreeToQualityStandards bool            `json:"agree_to_quality_standards"`
}

func NewApplication(d Draft) Application {
	app := Application{
		Skills:                  d.DistinctSkills(),
		Bio:                     strings.TrimSpace(d.Bio),
		Education:               []Education{},
		Certifications:          []Certification{},
		PortfolioLink:           strings.TrimSpace(d.PortfolioLink),
		Availability:            d.Availability,
		WorkingHours:            strings.TrimSpace(d.WorkingHours),
		AgreeToFreelancerTerms:  d.AgreeToFreelancerTerms,
		AgreeToQualityStandards: d.AgreeToQualityStandards,
	}
	for _, e := range d.Education {
		if !e.started() {
			continue
		}
		app.Education = append(app.Education, Education{
			Institution: strings.TrimSpace(e.Institution),
			Degree:      strings.TrimSpace(e.Degree),
			Field:       strings.TrimSpace(e.Field),
			Year:        strings.TrimSpace(e.Year),
		})
	}
	for _, c := range d.Certifications {
		if !c.started() {
			continue
		}
		app.Certifications = append(app.Certifications, Certification{
			Name:   strings.TrimSpace(c.Name),
			Issuer: strings.TrimSpace(c.Issuer),
			Year:   strings.TrimSpace(c.Year),
		})
	}
	return app
}

// Gateway persists a finished application as a freelancer role grant.
type Gateway interface {
	ApplyAsFreelancer(ctx context.Context, id Identity, app Application) error
}

// IdentityRefresher reloads the candidate after the grant so role-gated
// surfaces see the new role.
type IdentityRefresher interface {
	RefreshIdentity(ctx context.Context, userID uuid.UUID) (Identity, error)
}

// SkillSource lists skill suggestions for the first step.
type SkillSource interface {
	SkillSuggestions(ctx context.Context) ([]Suggestion, error)
}

// DraftSeeder builds the initial draft from whatever partial profile the
// candidate already has.
type DraftSeeder interface {
	SeedDraft(ctx context.Context, userID uuid.UUID) (Draft, error)
}
