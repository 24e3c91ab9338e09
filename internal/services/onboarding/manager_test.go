package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(gw *fakeGateway, skills *fakeSkills, seeder DraftSeeder) (*Manager, *MemoryDraftStore) {
	store := NewMemoryDraftStore()
	deps := Deps{
		Store:     store,
		Gateway:   gw,
		Refresher: &fakeRefresher{},
		Seeder:    seeder,
	}
	if skills != nil {
		deps.Skills = skills
	}
	return NewManager(deps), store
}

func TestManagerMountSeedsAndFetchesOnce(t *testing.T) {
	skills := &fakeSkills{list: catalogFixture}
	m, _ := newTestManager(&fakeGateway{}, skills, fakeSeeder{draft: Draft{Bio: "from profile"}})
	id := testIdentity()
	ctx := context.Background()

	w := m.Mount(ctx, id)
	assert.Equal(t, FirstStep, w.Step())
	assert.Equal(t, "from profile", w.Draft().Bio)
	assert.Equal(t, catalogFixture, w.Suggestions())

	again := m.Mount(ctx, id)
	assert.Same(t, w, again)
	assert.Equal(t, 1, skills.calls)
	assert.Equal(t, 1, m.Active())
}

func TestManagerSuggestionFailureDegrades(t *testing.T) {
	skills := &fakeSkills{err: errors.New("catalog offline")}
	m, _ := newTestManager(&fakeGateway{}, skills, nil)

	w := m.Mount(context.Background(), testIdentity())
	assert.NotNil(t, w.Suggestions())
	assert.Empty(t, w.Suggestions())
}

func TestManagerSeedFailureStartsEmpty(t *testing.T) {
	m, _ := newTestManager(&fakeGateway{}, nil, fakeSeeder{err: errors.New("boom")})
	w := m.Mount(context.Background(), testIdentity())
	assert.Equal(t, Draft{}, w.Draft())
}

func TestManagerResumesFromSnapshot(t *testing.T) {
	m, store := newTestManager(&fakeGateway{}, nil, fakeSeeder{draft: Draft{Bio: "seed"}})
	id := testIdentity()
	ctx := context.Background()

	d := completeDraft()
	require.NoError(t, store.Save(ctx, id.UserID, Snapshot{Step: StepAvailability, Draft: d}))

	w := m.Mount(ctx, id)
	assert.Equal(t, StepAvailability, w.Step())
	assert.Equal(t, d, w.Draft())
}

func TestManagerPersistAndDiscard(t *testing.T) {
	m, store := newTestManager(&fakeGateway{}, nil, nil)
	id := testIdentity()
	ctx := context.Background()

	w := m.Mount(ctx, id)
	require.NoError(t, w.SetField(FieldBio, rawJSON(t, "hello")))
	m.Persist(ctx, w)

	snap, err := store.Load(ctx, id.UserID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "hello", snap.Draft.Bio)

	require.NoError(t, m.Discard(ctx, id.UserID))
	snap, err = store.Load(ctx, id.UserID)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Zero(t, m.Active())

	fresh := m.Mount(ctx, id)
	assert.NotSame(t, w, fresh)
	assert.Empty(t, fresh.Draft().Bio)
}

func TestManagerSubmitForgetsSession(t *testing.T) {
	gw := &fakeGateway{}
	m, store := newTestManager(gw, nil, nil)
	id := testIdentity()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id.UserID, Snapshot{Step: LastStep, Draft: completeDraft()}))

	w := m.Mount(ctx, id)
	refreshed, err := m.Submit(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, GrantedRole, refreshed.Role)
	assert.Len(t, gw.Calls(), 1)
	assert.Zero(t, m.Active())

	snap, err := store.Load(ctx, id.UserID)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManagerSubmitFailureKeepsSession(t *testing.T) {
	gw := &fakeGateway{err: errGatewayDown}
	m, _ := newTestManager(gw, nil, nil)
	id := testIdentity()
	ctx := context.Background()

	w := m.Mount(ctx, id)
	for _, f := range []struct {
		name string
		v    any
	}{
		{FieldSkills, []string{"a", "b", "c"}},
		{FieldBio, bioOf(80)},
		{FieldAvailability, AvailabilityPartTime},
		{FieldWorkingHours, "evenings"},
		{FieldAgreeToFreelancerTerms, true},
		{FieldAgreeToQualityStandards, true},
	} {
		require.NoError(t, w.SetField(f.name, rawJSON(t, f.v)))
	}
	for i := 0; i < 3; i++ {
		_, errs, err := w.Advance()
		require.NoError(t, err)
		require.True(t, errs.OK())
	}

	_, err := m.Submit(ctx, w)
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Same(t, w, m.Mount(ctx, id))
	assert.Equal(t, bioOf(80), w.Draft().Bio)
}

func TestManagerDiscardRefusedWhileSubmitting(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	m, store := newTestManager(gw, nil, nil)
	id := testIdentity()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id.UserID, Snapshot{Step: LastStep, Draft: completeDraft()}))
	w := m.Mount(ctx, id)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(ctx, w)
		done <- err
	}()
	<-gw.entered

	assert.ErrorIs(t, m.Discard(ctx, id.UserID), ErrSubmissionInFlight)

	close(gw.release)
	require.NoError(t, <-done)
}

func TestManagerMountsWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	store := NewRedisDraftStore(rdb, time.Minute)
	_, err := store.Load(context.Background(), testIdentity().UserID)
	require.Error(t, err)

	m := NewManager(Deps{
		Store:     store,
		Gateway:   &fakeGateway{},
		Refresher: &fakeRefresher{},
		Seeder:    fakeSeeder{draft: Draft{Bio: "seed"}},
	})
	w := m.Mount(context.Background(), testIdentity())
	assert.Equal(t, "seed", w.Draft().Bio)
	m.Persist(context.Background(), w)
}

func backdate(w *Wizard, d time.Duration) {
	w.mu.Lock()
	w.updatedAt = w.updatedAt.Add(-d)
	w.mu.Unlock()
}

func TestManagerMountDropsIdleSession(t *testing.T) {
	store := NewMemoryDraftStore()
	m := NewManager(Deps{
		Store:     store,
		Gateway:   &fakeGateway{},
		Refresher: &fakeRefresher{},
		Seeder:    fakeSeeder{draft: Draft{Bio: "from profile"}},
		IdleTTL:   time.Hour,
	})
	id := testIdentity()
	ctx := context.Background()

	w := m.Mount(ctx, id)
	require.NoError(t, w.SetField(FieldSkills, rawJSON(t, []string{"a", "b", "c"})))
	require.NoError(t, w.SetField(FieldBio, rawJSON(t, bioOf(80))))
	_, errs, err := w.Advance()
	require.NoError(t, err)
	require.True(t, errs.OK())
	m.Persist(ctx, w)

	backdate(w, 2*time.Hour)

	fresh := m.Mount(ctx, id)
	assert.NotSame(t, w, fresh)
	assert.Equal(t, FirstStep, fresh.Step())
	assert.Equal(t, "from profile", fresh.Draft().Bio)
	assert.Equal(t, 1, m.Active())

	snap, err := store.Load(ctx, id.UserID)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManagerMountKeepsRecentSession(t *testing.T) {
	m := NewManager(Deps{Gateway: &fakeGateway{}, Refresher: &fakeRefresher{}, IdleTTL: time.Hour})
	id := testIdentity()
	ctx := context.Background()

	w := m.Mount(ctx, id)
	backdate(w, 30*time.Minute)
	assert.Same(t, w, m.Mount(ctx, id))

	// mounting again counts as activity
	backdate(w, 45*time.Minute)
	assert.Same(t, w, m.Mount(ctx, id))
}

func TestManagerSweep(t *testing.T) {
	store := NewMemoryDraftStore()
	m := NewManager(Deps{Store: store, Gateway: &fakeGateway{}, Refresher: &fakeRefresher{}, IdleTTL: time.Hour})
	ctx := context.Background()

	idle := testIdentity()
	busy := testIdentity()

	wIdle := m.Mount(ctx, idle)
	m.Persist(ctx, wIdle)
	wBusy := m.Mount(ctx, busy)
	backdate(wIdle, 2*time.Hour)

	assert.Equal(t, 1, m.Sweep(ctx))
	assert.Equal(t, 1, m.Active())
	assert.Same(t, wBusy, m.Mount(ctx, busy))

	snap, err := store.Load(ctx, idle.UserID)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManagerSweepSkipsInFlightSubmit(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	store := NewMemoryDraftStore()
	m := NewManager(Deps{Store: store, Gateway: gw, Refresher: &fakeRefresher{}, IdleTTL: time.Hour})
	id := testIdentity()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id.UserID, Snapshot{Step: LastStep, Draft: completeDraft()}))
	w := m.Mount(ctx, id)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(ctx, w)
		done <- err
	}()
	<-gw.entered

	backdate(w, 2*time.Hour)
	assert.Zero(t, m.Sweep(ctx))
	assert.Same(t, w, m.Mount(ctx, id))

	close(gw.release)
	require.NoError(t, <-done)
}
