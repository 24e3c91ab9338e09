package onboarding

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// Advance validates d against step's gate. On success it returns the next
// step (capped at LastStep); otherwise the same step and the failing fields.
func Advance(step Step, d Draft) (Step, FieldErrors) {
	errs := Validate(step, d)
	if !errs.OK() {
		return step, errs
	}
	if step >= LastStep {
		return LastStep, errs
	}
	return step + 1, errs
}

// Retreat moves one step back without validating.
func Retreat(step Step) Step {
	if step <= FirstStep {
		return FirstStep
	}
	return step - 1
}

// Wizard is the controller of one candidate's onboarding session. It owns the
// draft; every mutation goes through its methods.
type Wizard struct {
	mu sync.Mutex

	identity    Identity
	step        Step
	draft       Draft
	errs        FieldErrors
	suggestions []Suggestion
	updatedAt   time.Time

	submitting bool
	completed  bool

	gateway   Gateway
	refresher IdentityRefresher
}

func NewWizard(id Identity, step Step, draft Draft, suggestions []Suggestion, gw Gateway, rf IdentityRefresher) *Wizard {
	if !step.Valid() {
		step = FirstStep
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	return &Wizard{
		identity:    id,
		step:        step,
		draft:       draft.Clone(),
		errs:        FieldErrors{},
		suggestions: suggestions,
		updatedAt:   time.Now(),
		gateway:     gw,
		refresher:   rf,
	}
}

func (w *Wizard) Identity() Identity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.identity
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Clone()
}

func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

func (w *Wizard) Suggestions() []Suggestion {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Suggestion{}, w.suggestions...)
}

// Snapshot captures what is needed to resume the session elsewhere.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{Step: w.step, Draft: w.draft.Clone(), SavedAt: w.updatedAt}
}

// View renders the current step with the errors of the last gate.
func (w *Wizard) View(filter string, loc *Localizer) StepView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Render(RenderInput{
		Step:        w.step,
		Draft:       w.draft,
		Errors:      w.errs,
		Suggestions: w.suggestions,
		Filter:      filter,
		Submitting:  w.submitting,
	}, loc)
}

// SetField overwrites one draft field and clears the stale errors for it.
// Edits are refused while a submission is in flight.
func (w *Wizard) SetField(name string, raw json.RawMessage) error {
	return w.SetFields(map[string]json.RawMessage{name: raw})
}

// SetFields applies a batch of field edits in name order. The batch is all or
// nothing: when one field fails to decode the draft is left untouched.
func (w *Wizard) SetFields(fields map[string]json.RawMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completed {
		return ErrCompleted
	}
	if w.submitting {
		return ErrSubmissionInFlight
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	next := w.draft.Clone()
	for _, name := range names {
		if err := next.SetField(name, fields[name]); err != nil {
			return &FieldError{Field: name, Err: err}
		}
	}
	w.draft = next
	for _, name := range names {
		w.clearErrors(name)
	}
	w.updatedAt = time.Now()
	return nil
}

func (w *Wizard) clearErrors(name string) {
	for f := range w.errs {
		if f == name || strings.HasPrefix(f, name+"[") {
			delete(w.errs, f)
		}
	}
}

// idleSince reports whether the wizard has not been touched since cutoff and
// can be dropped. A wizard with a submission in flight is never idle.
func (w *Wizard) idleSince(cutoff time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.submitting && w.updatedAt.Before(cutoff)
}

func (w *Wizard) touch() {
	w.mu.Lock()
	w.updatedAt = time.Now()
	w.mu.Unlock()
}

// Advance runs the gate of the current step and moves forward when it passes.
func (w *Wizard) Advance() (Step, FieldErrors, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completed {
		return w.step, nil, ErrCompleted
	}
	next, errs := Advance(w.step, w.draft)
	w.step = next
	w.errs = errs
	w.updatedAt = time.Now()
	return next, errs, nil
}

// Retreat moves back one step. It is refused while a submission is pending so
// the candidate cannot walk away from an unfinished write.
func (w *Wizard) Retreat() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completed {
		return w.step, ErrCompleted
	}
	if w.submitting {
		return w.step, ErrSubmissionInFlight
	}
	w.step = Retreat(w.step)
	w.errs = FieldErrors{}
	w.updatedAt = time.Now()
	return w.step, nil
}

// SubmitFinal hands the draft to the gateway exactly once. A call made while
// another is in flight returns ErrSubmissionInFlight without side effects. On
// gateway failure the draft is kept and a *SubmissionError is returned; on
// success the identity is refreshed, the draft discarded and the wizard
// marked completed.
func (w *Wizard) SubmitFinal(ctx context.Context) (Identity, error) {
	w.mu.Lock()
	switch {
	case w.completed:
		w.mu.Unlock()
		return Identity{}, ErrCompleted
	case w.submitting:
		w.mu.Unlock()
		return Identity{}, ErrSubmissionInFlight
	case w.step != LastStep:
		w.mu.Unlock()
		return Identity{}, ErrNotFinalStep
	}
	if errs := ValidateThrough(LastStep, w.draft); !errs.OK() {
		w.errs = errs
		w.mu.Unlock()
		return Identity{}, &ValidationError{Step: LastStep, Errors: errs}
	}
	w.submitting = true
	id := w.identity
	app := NewApplication(w.draft)
	w.mu.Unlock()

	if err := w.gateway.ApplyAsFreelancer(ctx, id, app); err != nil {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
		log.Printf("[Onboarding] submit failed for user %s: %v", id.UserID, err)
		return Identity{}, &SubmissionError{Err: err}
	}

	refreshed, err := w.refresher.RefreshIdentity(ctx, id.UserID)
	if err != nil {
		log.Printf("[Onboarding] refresh identity failed for user %s: %v", id.UserID, err)
		refreshed = id
		refreshed.Role = GrantedRole
	}

	w.mu.Lock()
	w.submitting = false
	w.completed = true
	w.identity = refreshed
	w.draft = Draft{}
	w.errs = FieldErrors{}
	w.updatedAt = time.Now()
	w.mu.Unlock()

	log.Printf("[Onboarding] user %s is now %s", refreshed.UserID, refreshed.Role)
	return refreshed, nil
}
