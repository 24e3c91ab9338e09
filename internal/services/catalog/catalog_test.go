package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/testkit"
)

func TestEmbeddedSeedsDecode(t *testing.T) {
	skills, err := LoadSkillSeeds("")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(skills), 3)

	gigs, err := LoadGigSeeds("")
	require.NoError(t, err)
	assert.NotEmpty(t, gigs)
}

func TestLoadSkillSeedsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"rust","name":"Rust","category":"Pemrograman"}]`), 0o600))

	seeds, err := LoadSkillSeeds(path)
	require.NoError(t, err)
	assert.Equal(t, []SkillSeed{{ID: "rust", Name: "Rust", Category: "Pemrograman"}}, seeds)

	_, err = LoadSkillSeeds(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSeedSkillsIsIdempotent(t *testing.T) {
	gdb := testkit.OpenDB(t)
	ctx := context.Background()
	seeds := []SkillSeed{
		{ID: "go", Name: "Go"},
		{ID: "sql", Name: "SQL"},
	}

	n, err := SeedSkills(ctx, gdb, seeds)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = SeedSkills(ctx, gdb, append(seeds, SkillSeed{ID: "figma", Name: "Figma"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	gdb.Model(&models.Skill{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestSeedSkillsRejectsBlankRows(t *testing.T) {
	gdb := testkit.OpenDB(t)
	_, err := SeedSkills(context.Background(), gdb, []SkillSeed{{ID: "", Name: "Nothing"}})
	assert.Error(t, err)
}

func TestSkillSuggestionsFromDatabase(t *testing.T) {
	gdb := testkit.OpenDB(t)
	ctx := context.Background()
	_, err := SeedSkills(ctx, gdb, []SkillSeed{
		{ID: "sql", Name: "SQL"},
		{ID: "figma", Name: "Figma"},
		{ID: "go", Name: "Go"},
	})
	require.NoError(t, err)

	repo := NewSkillRepository(gdb, nil, 0)
	list, err := repo.SkillSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "figma", list[0].ID)
	assert.Equal(t, "Go", list[1].Name)
	assert.NoError(t, repo.Invalidate(ctx))
}

func TestSkillSuggestionsSurviveCacheOutage(t *testing.T) {
	gdb := testkit.OpenDB(t)
	ctx := context.Background()
	_, err := SeedSkills(ctx, gdb, []SkillSeed{{ID: "go", Name: "Go"}})
	require.NoError(t, err)

	cache := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { cache.Close() })

	list, err := NewSkillRepository(gdb, cache, time.Minute).SkillSuggestions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSkillSuggestionsDatabaseError(t *testing.T) {
	gdb := testkit.OpenDB(t)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = NewSkillRepository(gdb, nil, 0).SkillSuggestions(context.Background())
	assert.Error(t, err)
}

func TestListPublishedGigs(t *testing.T) {
	gdb := testkit.OpenDB(t)
	ctx := context.Background()
	_, err := SeedGigs(ctx, gdb, []GigSeed{
		{Slug: "a", Title: "Makalah Sejarah", Category: "Makalah", BasePrice: 100},
		{Slug: "b", Title: "Skripsi Ekonomi", Category: "Skripsi", BasePrice: 900},
		{Slug: "c", Title: "Makalah Biologi", Category: "Makalah", BasePrice: 300},
	})
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&models.Gig{Slug: "hidden", Title: "Draft", Category: "Lainnya", Status: models.GigDraft}).Error)

	svc := NewGigService(gdb)

	page, err := svc.ListPublished(ctx, GigFilter{Category: "Makalah", Sort: "price_high"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Slug)

	page, err = svc.ListPublished(ctx, GigFilter{Search: "skripsi"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Slug)

	page, err = svc.ListPublished(ctx, GigFilter{Limit: 2, Page: 2, Sort: "price_low"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Slug)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makalah", "Skripsi"}, cats)
}
