package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
)

//go:embed seed/skills.json
var defaultSkillsJSON []byte

//go:embed seed/gigs.json
var defaultGigsJSON []byte

type SkillSeed struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type GigSeed struct {
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	BasePrice int64           `json:"base_price"`
	CoverURL  string          `json:"cover_url"`
	Packages  json.RawMessage `json:"packages"`
}

// LoadSkillSeeds reads skill seeds from path, or the bundled list when path
// is empty.
func LoadSkillSeeds(path string) ([]SkillSeed, error) {
	var seeds []SkillSeed
	if err := loadSeedFile(path, defaultSkillsJSON, &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

// LoadGigSeeds reads gig seeds from path, or the bundled list when path is
// empty.
func LoadGigSeeds(path string) ([]GigSeed, error) {
	var seeds []GigSeed
	if err := loadSeedFile(path, defaultGigsJSON, &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

func loadSeedFile(path string, fallback []byte, out any) error {
	raw := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	return nil
}

// SeedSkills inserts the skills that do not exist yet and returns how many
// rows were added. Existing slugs are left alone.
func SeedSkills(ctx context.Context, db *gorm.DB, seeds []SkillSeed) (int64, error) {
	rows := make([]models.Skill, 0, len(seeds))
	for i, s := range seeds {
		slug := strings.ToLower(strings.TrimSpace(s.ID))
		name := strings.TrimSpace(s.Name)
		if slug == "" || name == "" {
			return 0, fmt.Errorf("skill seed %d: id and name are required", i)
		}
		rows = append(rows, models.Skill{Slug: slug, Name: name, Category: strings.TrimSpace(s.Category)})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("insert skills: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SeedGigs inserts published catalog gigs that do not exist yet.
func SeedGigs(ctx context.Context, db *gorm.DB, seeds []GigSeed) (int64, error) {
	rows := make([]models.Gig, 0, len(seeds))
	for i, s := range seeds {
		if strings.TrimSpace(s.Slug) == "" || strings.TrimSpace(s.Title) == "" {
			return 0, fmt.Errorf("gig seed %d: slug and title are required", i)
		}
		if s.BasePrice < 0 {
			return 0, fmt.Errorf("gig seed %s: negative price", s.Slug)
		}
		packages := datatypes.JSON("{}")
		if len(s.Packages) > 0 {
			packages = datatypes.JSON(s.Packages)
		}
		rows = append(rows, models.Gig{
			Slug:      strings.TrimSpace(s.Slug),
			Title:     strings.TrimSpace(s.Title),
			Category:  strings.TrimSpace(s.Category),
			BasePrice: s.BasePrice,
			CoverURL:  s.CoverURL,
			Packages:  packages,
			Status:    models.GigPublished,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("insert gigs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
