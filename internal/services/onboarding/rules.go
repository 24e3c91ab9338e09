package onboarding

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinSkills = 3
	BioMin    = 50
	BioMax    = 500
)

// Violation is a locale-independent field error: a message key plus the
// arguments its translation expects.
type Violation struct {
	Code string `json:"code"`
	Args []any  `json:"args,omitempty"`
}

// FieldErrors maps a field name (or row path such as "education[1].degree")
// to its violation. One entry per failing field.
type FieldErrors map[string]Violation

func (e FieldErrors) add(field, code string, args ...any) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = Violation{Code: code, Args: args}
}

func (e FieldErrors) OK() bool { return len(e) == 0 }

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names sorted.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (e FieldErrors) merge(other FieldErrors) {
	for f, v := range other {
		if _, ok := e[f]; !ok {
			e[f] = v
		}
	}
}

var validate = validator.New()

// Validate evaluates every rule of step against d. It never stops at the first
// failure.
func Validate(step Step, d Draft) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case StepSkills:
		validateSkills(d, errs)
	case StepBackground:
		validateBackground(d, errs)
	case StepAvailability:
		validateAvailability(d, errs)
	case StepAgreements:
		validateAgreements(d, errs)
	default:
		errs.add("step", CodeStepOutOfRange, int(step))
	}
	return errs
}

// ValidateThrough runs the gates of every step up to and including last.
func ValidateThrough(last Step, d Draft) FieldErrors {
	errs := FieldErrors{}
	for s := FirstStep; s <= last && s.Valid(); s++ {
		errs.merge(Validate(s, d))
	}
	return errs
}

func validateSkills(d Draft, errs FieldErrors) {
	if n := len(d.DistinctSkills()); n < MinSkills {
		errs.add(FieldSkills, CodeSkillsMin, MinSkills, n)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(d.Bio)); n < BioMin || n > BioMax {
		errs.add(FieldBio, CodeBioLength, BioMin, BioMax, n)
	}
}

// validateBackground only checks rows the candidate started; a started row
// needs all of its mandatory columns.
func validateBackground(d Draft, errs FieldErrors) {
	for i, e := range d.Education {
		if !e.started() {
			continue
		}
		if blank(e.Institution) {
			errs.add(rowField(FieldEducation, i, "institution"), CodeRequired)
		}
		if blank(e.Degree) {
			errs.add(rowField(FieldEducation, i, "degree"), CodeRequired)
		}
	}
	for i, c := range d.Certifications {
		if !c.started() {
			continue
		}
		if blank(c.Name) {
			errs.add(rowField(FieldCertifications, i, "name"), CodeRequired)
		}
		if blank(c.Issuer) {
			errs.add(rowField(FieldCertifications, i, "issuer"), CodeRequired)
		}
	}
}

func validateAvailability(d Draft, errs FieldErrors) {
	if err := validate.Var(string(d.Availability), "required,oneof=Full-time Part-time Weekends"); err != nil {
		errs.add(FieldAvailability, CodeAvailability)
	}
	if blank(d.WorkingHours) {
		errs.add(FieldWorkingHours, CodeRequired)
	}
	if link := strings.TrimSpace(d.PortfolioLink); link != "" && !isWebURL(link) {
		errs.add(FieldPortfolioLink, CodeURL)
	}
}

func validateAgreements(d Draft, errs FieldErrors) {
	if !d.AgreeToFreelancerTerms {
		errs.add(FieldAgreeToFreelancerTerms, CodeMustAgree)
	}
	if !d.AgreeToQualityStandards {
		errs.add(FieldAgreeToQualityStandards, CodeMustAgree)
	}
}

// isWebURL accepts absolute http(s) URLs with a host.
func isWebURL(s string) bool {
	if validate.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func rowField(list string, i int, column string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, column)
}
