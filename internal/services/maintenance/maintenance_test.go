package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/testkit"
)

func TestCleanupDrafts(t *testing.T) {
	store := onboarding.NewMemoryDraftStore()
	ctx := context.Background()

	old, fresh := uuid.New(), uuid.New()
	require.NoError(t, store.Save(ctx, old, onboarding.Snapshot{
		Step:    onboarding.StepBackground,
		SavedAt: time.Now().Add(-60 * 24 * time.Hour),
	}))
	require.NoError(t, store.Save(ctx, fresh, onboarding.Snapshot{
		Step:    onboarding.StepSkills,
		SavedAt: time.Now(),
	}))

	res, err := CleanupDrafts(ctx, store, 30*24*time.Hour, true)
	require.NoError(t, err)
	assert.Equal(t, CleanupResult{Matched: 1}, res)

	snap, err := store.Load(ctx, old)
	require.NoError(t, err)
	assert.NotNil(t, snap)

	res, err = CleanupDrafts(ctx, store, 30*24*time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, CleanupResult{Matched: 1, Deleted: 1}, res)

	snap, err = store.Load(ctx, old)
	require.NoError(t, err)
	assert.Nil(t, snap)
	snap, err = store.Load(ctx, fresh)
	require.NoError(t, err)
	assert.NotNil(t, snap)

	_, err = CleanupDrafts(ctx, store, 0, false)
	assert.Error(t, err)
}

func TestNormalizeEmails(t *testing.T) {
	gdb := testkit.OpenDB(t)
	ctx := context.Background()

	mk := func(email string) models.User {
		u := models.User{Name: email, Email: email, Password: "x", Role: models.RoleClient, IsActive: true}
		require.NoError(t, gdb.Create(&u).Error)
		return u
	}
	mk("rina@example.com")
	mixed := mk("  Budi@Example.com ")
	dup := mk("RINA@example.com")

	res, err := NormalizeEmails(ctx, gdb, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []string{dup.Email}, res.Conflicts)

	var check models.User
	require.NoError(t, gdb.First(&check, "id = ?", mixed.ID).Error)
	assert.Equal(t, "  Budi@Example.com ", check.Email)

	res, err = NormalizeEmails(ctx, gdb, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	require.NoError(t, gdb.First(&check, "id = ?", mixed.ID).Error)
	assert.Equal(t, "budi@example.com", check.Email)
	require.NoError(t, gdb.First(&check, "id = ?", dup.ID).Error)
	assert.Equal(t, "RINA@example.com", check.Email)
}
