package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
)

const skillsCacheKey = "catalog:skills"

// SkillRepository serves the onboarding skill suggestions from the skills
// table, cached in Redis when a client is configured.
type SkillRepository struct {
	DB    *gorm.DB
	Cache *redis.Client
	TTL   time.Duration
}

func NewSkillRepository(db *gorm.DB, cache *redis.Client, ttl time.Duration) *SkillRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SkillRepository{DB: db, Cache: cache, TTL: ttl}
}

// SkillSuggestions returns every known skill ordered by name. Cache failures
// fall through to the database.
func (r *SkillRepository) SkillSuggestions(ctx context.Context) ([]onboarding.Suggestion, error) {
	if list, ok := r.cached(ctx); ok {
		return list, nil
	}

	var skills []models.Skill
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	list := make([]onboarding.Suggestion, 0, len(skills))
	for _, s := range skills {
		list = append(list, onboarding.Suggestion{ID: s.Slug, Name: s.Name})
	}
	r.store(ctx, list)
	return list, nil
}

func (r *SkillRepository) cached(ctx context.Context) ([]onboarding.Suggestion, bool) {
	if r.Cache == nil {
		return nil, false
	}
	raw, err := r.Cache.Get(ctx, skillsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[Catalog] read skills cache: %v", err)
		}
		return nil, false
	}
	var list []onboarding.Suggestion
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Printf("[Catalog] decode skills cache: %v", err)
		return nil, false
	}
	return list, true
}

func (r *SkillRepository) store(ctx context.Context, list []onboarding.Suggestion) {
	if r.Cache == nil {
		return
	}
	b, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, skillsCacheKey, b, r.TTL).Err(); err != nil {
		log.Printf("[Catalog] write skills cache: %v", err)
	}
}

// Invalidate drops the cached suggestion list, e.g. after seeding.
func (r *SkillRepository) Invalidate(ctx context.Context) error {
	if r.Cache == nil {
		return nil
	}
	if err := r.Cache.Del(ctx, skillsCacheKey).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", skillsCacheKey, err)
	}
	return nil
}
