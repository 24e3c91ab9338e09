package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Availability string

const (
	AvailabilityFullTime Availability = "Full-time"
	AvailabilityPartTime Availability = "Part-time"
	AvailabilityWeekends Availability = "Weekends"
)

// AvailabilityOptions returns the selectable values in display order.
func AvailabilityOptions() []Availability {
	return []Availability{AvailabilityFullTime, AvailabilityPartTime, AvailabilityWeekends}
}

// Field names accepted by Draft.SetField. They double as the keys of FieldErrors.
const (
	FieldSkills                  = "skills"
	FieldBio                     = "bio"
	FieldEducation               = "education"
	FieldCertifications          = "certifications"
	FieldPortfolioLink           = "portfolioLink"
	FieldAvailability            = "availability"
	FieldWorkingHours            = "workingHours"
	FieldAgreeToFreelancerTerms  = "agreeToFreelancerTerms"
	FieldAgreeToQualityStandards = "agreeToQualityStandards"
)

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
}

// started reports whether the candidate typed anything into the row.
func (e Education) started() bool {
	return !blank(e.Institution, e.Degree, e.Field, e.Year)
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

func (c Certification) started() bool {
	return !blank(c.Name, c.Issuer, c.Year)
}

// Draft is the in-progress onboarding form. A single Wizard owns it for the
// whole session.
type Draft struct {
	Skills                  []string        `json:"skills"`
	Bio                     string          `json:"bio"`
	Education               []Education     `json:"education"`
	Certifications          []Certification `json:"certifications"`
	PortfolioLink           string          `json:"portfolioLink"`
	Availability            Availability    `json:"availability"`
	WorkingHours            string          `json:"workingHours"`
	AgreeToFreelancerTerms  bool            `json:"agreeToFreelancerTerms"`
	AgreeToQualityStandards bool            `json:"agreeToQualityStandards"`
}

// SetField overwrites one field from its JSON encoding. The draft is left
// untouched when the value does not decode.
func (d *Draft) SetField(name string, raw json.RawMessage) error {
	switch name {
	case FieldSkills:
		return decodeField(name, raw, &d.Skills)
	case FieldBio:
		return decodeField(name, raw, &d.Bio)
	case FieldEducation:
		return decodeField(name, raw, &d.Education)
	case FieldCertifications:
		return decodeField(name, raw, &d.Certifications)
	case FieldPortfolioLink:
		return decodeField(name, raw, &d.PortfolioLink)
	case FieldAvailability:
		return decodeField(name, raw, &d.Availability)
	case FieldWorkingHours:
		return decodeField(name, raw, &d.WorkingHours)
	case FieldAgreeToFreelancerTerms:
		return decodeField(name, raw, &d.AgreeToFreelancerTerms)
	case FieldAgreeToQualityStandards:
		return decodeField(name, raw, &d.AgreeToQualityStandards)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

func decodeField[T any](name string, raw json.RawMessage, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
	}
	*dst = v
	return nil
}

// Clone returns a deep copy so callers never share slices with the owner.
func (d Draft) Clone() Draft {
	out := d
	out.Skills = cloneSlice(d.Skills)
	out.Education = cloneSlice(d.Education)
	out.Certifications = cloneSlice(d.Certifications)
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// DistinctSkills returns the trimmed, de-duplicated skill ids in input order.
func (d Draft) DistinctSkills() []string {
	seen := make(map[string]struct{}, len(d.Skills))
	out := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
