// Package maintenance holds the one-off data chores run from dbtool.
package maintenance

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
)

type CleanupResult struct {
	Matched int
	Deleted int
}

// DraftSnapshots is the onboarding snapshot store as seen by the cleanup.
type DraftSnapshots interface {
	Stale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// CleanupDrafts removes onboarding snapshots last saved before olderThan ago.
// With dryRun it only counts.
func CleanupDrafts(ctx context.Context, drafts DraftSnapshots, olderThan time.Duration, dryRun bool) (CleanupResult, error) {
	if olderThan <= 0 {
		return CleanupResult{}, fmt.Errorf("cleanup drafts: age must be positive, got %s", olderThan)
	}
	stale, err := drafts.Stale(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return CleanupResult{}, fmt.Errorf("list drafts: %w", err)
	}

	res := CleanupResult{Matched: len(stale)}
	if dryRun {
		return res, nil
	}
	for _, userID := range stale {
		if err := drafts.Delete(ctx, userID); err != nil {
			return res, fmt.Errorf("delete draft of %s: %w", userID, err)
		}
		res.Deleted++
	}
	if res.Deleted > 0 {
		log.Printf("[Maintenance] removed %d onboarding drafts older than %s", res.Deleted, olderThan)
	}
	return res, nil
}

type NormalizeResult struct {
	Updated   int
	Conflicts []string
}

// NormalizeEmails lower-cases and trims every user email. Rows whose
// normalized address already belongs to another user are left untouched and
// reported as conflicts.
func NormalizeEmails(ctx context.Context, db *gorm.DB, dryRun bool) (NormalizeResult, error) {
	var users []models.User
	if err := db.WithContext(ctx).Select("id", "email").Order("created_at ASC").Find(&users).Error; err != nil {
		return NormalizeResult{}, fmt.Errorf("load users: %w", err)
	}

	owner := make(map[string]uuid.UUID, len(users))
	for _, u := range users {
		if norm := normalizeEmail(u.Email); norm == u.Email {
			owner[norm] = u.ID
		}
	}

	var res NormalizeResult
	for _, u := range users {
		norm := normalizeEmail(u.Email)
		if norm == u.Email {
			continue
		}
		if id, taken := owner[norm]; taken && id != u.ID {
			res.Conflicts = append(res.Conflicts, u.Email)
			continue
		}
		owner[norm] = u.ID
		res.Updated++
		if dryRun {
			continue
		}
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Update("email", norm).Error; err != nil {
			return res, fmt.Errorf("update email of %s: %w", u.ID, err)
		}
	}
	return res, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
