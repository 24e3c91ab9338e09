package onboarding

import (
	"strings"
	"unicode/utf8"
)

// MaxVisibleRows caps how many education/certification rows a view carries.
const MaxVisibleRows = 5

type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterSkills narrows suggestions by a case-insensitive match on id or name.
// It is a pure view helper and never touches the draft.
func FilterSkills(all []Suggestion, term string) []Suggestion {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Suggestion, 0, len(all))
	for _, s := range all {
		if term == "" ||
			strings.Contains(strings.ToLower(s.Name), term) ||
			strings.Contains(strings.ToLower(s.ID), term) {
			out = append(out, s)
		}
	}
	return out
}

type SkillsView struct {
	Selected    []string     `json:"selected"`
	Bio         string       `json:"bio"`
	BioLength   int          `json:"bio_length"` // hint only
	BioMin      int          `json:"bio_min"`
	BioMax      int          `json:"bio_max"`
	MinSkills   int          `json:"min_skills"`
	Filter      string       `json:"filter"`
	Suggestions []Suggestion `json:"suggestions"`
}

type BackgroundView struct {
	Education            []Education     `json:"education"`
	HiddenEducation      int             `json:"hidden_education"`
	Certifications       []Certification `json:"certifications"`
	HiddenCertifications int             `json:"hidden_certifications"`
}

type AvailabilityView struct {
	Availability  Availability   `json:"availability"`
	Options       []Availability `json:"options"`
	WorkingHours  string         `json:"working_hours"`
	PortfolioLink string         `json:"portfolio_link"`
}

type AgreementsView struct {
	AgreeToFreelancerTerms  bool    `json:"agree_to_freelancer_terms"`
	AgreeToQualityStandards bool    `json:"agree_to_quality_standards"`
	Summary                 Summary `json:"summary"`
}

// Summary is the read-only recap shown before the final submit.
type Summary struct {
	Skills             []string     `json:"skills"`
	Bio                string       `json:"bio"`
	EducationCount     int          `json:"education_count"`
	CertificationCount int          `json:"certification_count"`
	Availability       Availability `json:"availability"`
	WorkingHours       string       `json:"working_hours"`
	PortfolioLink      string       `json:"portfolio_link"`
}

func Summarize(d Draft) Summary {
	app := NewApplication(d)
	return Summary{
		Skills:             app.Skills,
		Bio:                app.Bio,
		EducationCount:     len(app.Education),
		CertificationCount: len(app.Certifications),
		Availability:       app.Availability,
		WorkingHours:       app.WorkingHours,
		PortfolioLink:      app.PortfolioLink,
	}
}

// StepView is what the client renders for one step. Exactly one of the
// per-step sections is set.
type StepView struct {
	Step       Step              `json:"step"`
	Name       string            `json:"name"`
	TotalSteps int               `json:"total_steps"`
	CanRetreat bool              `json:"can_retreat"`
	IsFinal    bool              `json:"is_final"`
	Submitting bool              `json:"submitting"`
	Errors     map[string]string `json:"errors"`

	Skills       *SkillsView       `json:"skills,omitempty"`
	Background   *BackgroundView   `json:"background,omitempty"`
	Availability *AvailabilityView `json:"availability,omitempty"`
	Agreements   *AgreementsView   `json:"agreements,omitempty"`
}

type RenderInput struct {
	Step        Step
	Draft       Draft
	Errors      FieldErrors
	Suggestions []Suggestion
	Filter      string
	Submitting  bool
}

func Render(in RenderInput, loc *Localizer) StepView {
	v := StepView{
		Step:       in.Step,
		Name:       in.Step.String(),
		TotalSteps: TotalSteps,
		CanRetreat: in.Step > FirstStep && !in.Submitting,
		IsFinal:    in.Step == LastStep,
		Submitting: in.Submitting,
		Errors:     loc.Errors(in.Errors),
	}
	d := in.Draft

	switch in.Step {
	case StepSkills:
		v.Skills = &SkillsView{
			Selected:    append([]string{}, d.Skills...),
			Bio:         d.Bio,
			BioLength:   utf8.RuneCountInString(strings.TrimSpace(d.Bio)),
			BioMin:      BioMin,
			BioMax:      BioMax,
			MinSkills:   MinSkills,
			Filter:      in.Filter,
			Suggestions: FilterSkills(in.Suggestions, in.Filter),
		}
	case StepBackground:
		edu, hiddenEdu := capRows(d.Education)
		certs, hiddenCerts := capRows(d.Certifications)
		v.Background = &BackgroundView{
			Education:            edu,
			HiddenEducation:      hiddenEdu,
			Certifications:       certs,
			HiddenCertifications: hiddenCerts,
		}
	case StepAvailability:
		v.Availability = &AvailabilityView{
			Availability:  d.Availability,
			Options:       AvailabilityOptions(),
			WorkingHours:  d.WorkingHours,
			PortfolioLink: d.PortfolioLink,
		}
	case StepAgreements:
		v.Agreements = &AgreementsView{
			AgreeToFreelancerTerms:  d.AgreeToFreelancerTerms,
			AgreeToQualityStandards: d.AgreeToQualityStandards,
			Summary:                 Summarize(d),
		}
	}
	return v
}

func capRows[T any](rows []T) ([]T, int) {
	if len(rows) <= MaxVisibleRows {
		return append([]T{}, rows...), 0
	}
	return append([]T{}, rows[:MaxVisibleRows]...), len(rows) - MaxVisibleRows
}
