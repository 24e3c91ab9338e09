package onboarding

import "fmt"

// Step is one of the four wizard screens. The set is closed: anything outside
// [StepSkills, StepAgreements] is rejected by Validate and Render.
type Step int

const (
	StepSkills Step = iota + 1
	StepBackground
	StepAvailability
	StepAgreements
)

const (
	FirstStep  = StepSkills
	LastStep   = StepAgreements
	TotalSteps = int(LastStep)
)

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	switch s {
	case StepSkills:
		return "skills"
	case StepBackground:
		return "background"
	case StepAvailability:
		return "availability"
	case StepAgreements:
		return "agreements"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}
