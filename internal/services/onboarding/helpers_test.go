package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls []Application
	err   error

	// when set, ApplyAsFreelancer signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGateway) ApplyAsFreelancer(_ context.Context, _ Identity, app Application) error {
	g.mu.Lock()
	g.calls = append(g.calls, app)
	g.mu.Unlock()

	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.err
}

func (g *fakeGateway) Calls() []Application {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Application(nil), g.calls...)
}

type fakeRefresher struct {
	calls int
	err   error
}

func (r *fakeRefresher) RefreshIdentity(_ context.Context, userID uuid.UUID) (Identity, error) {
	r.calls++
	if r.err != nil {
		return Identity{}, r.err
	}
	return Identity{UserID: userID, Name: "Rina", Email: "rina@example.com", Role: GrantedRole}, nil
}

type fakeSkills struct {
	calls int
	list  []Suggestion
	err   error
}

func (s *fakeSkills) SkillSuggestions(context.Context) ([]Suggestion, error) {
	s.calls++
	return s.list, s.err
}

type fakeSeeder struct {
	draft Draft
	err   error
}

func (s fakeSeeder) SeedDraft(context.Context, uuid.UUID) (Draft, error) {
	return s.draft, s.err
}

var errGatewayDown = errors.New("gateway down")

func testIdentity() Identity {
	return Identity{UserID: uuid.New(), Name: "Rina", Email: "rina@example.com", Role: "client"}
}

func bioOf(n int) string {
	return strings.Repeat("a", n)
}

// completeDraft passes every gate.
func completeDraft() Draft {
	return Draft{
		Skills:                  []string{"go", "sql", "docker"},
		Bio:                     bioOf(60),
		Education:               []Education{},
		Certifications:          []Certification{},
		Availability:            AvailabilityFullTime,
		WorkingHours:            "09:00-17:00",
		PortfolioLink:           "",
		AgreeToFreelancerTerms:  true,
		AgreeToQualityStandards: true,
	}
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
