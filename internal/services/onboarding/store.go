package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Snapshot is a resumable copy of a wizard session.
type Snapshot struct {
	Step    Step      `json:"step"`
	Draft   Draft     `json:"draft"`
	SavedAt time.Time `json:"saved_at"`
}

// DraftStore keeps snapshots between requests and across restarts. Load
// returns (nil, nil) when nothing is stored.
type DraftStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	Save(ctx context.Context, userID uuid.UUID, s Snapshot) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type MemoryDraftStore struct {
	data map[uuid.UUID]Snapshot
	mu   sync.Mutex
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{data: make(map[uuid.UUID]Snapshot)}
}

func (s *MemoryDraftStore) Load(_ context.Context, userID uuid.UUID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.data[userID]
	if !ok {
		return nil, nil
	}
	snap.Draft = snap.Draft.Clone()
	return &snap, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, userID uuid.UUID, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Draft = snap.Draft.Clone()
	s.data[userID] = snap
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, userID)
	return nil
}

// Stale lists the candidates whose snapshot was saved before cutoff.
func (s *MemoryDraftStore) Stale(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []uuid.UUID
	for userID, snap := range s.data {
		if snap.SavedAt.Before(cutoff) {
			out = append(out, userID)
		}
	}
	return out, nil
}

// RedisDraftStore keeps snapshots as JSON under "onboarding:draft:<user>" and
// lets them expire after ttl of inactivity.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

const draftKeyPrefix = "onboarding:draft:"

func draftKey(userID uuid.UUID) string {
	return draftKeyPrefix + userID.String()
}

func (s *RedisDraftStore) Load(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	raw, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &snap, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, userID uuid.UUID, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Stale scans every snapshot key and lists the candidates whose snapshot was
// saved before cutoff. Snapshots that no longer decode count as stale.
func (s *RedisDraftStore) Stale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	iter := s.client.Scan(ctx, 0, draftKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID, err := uuid.Parse(strings.TrimPrefix(key, draftKeyPrefix))
		if err != nil {
			continue
		}

		raw, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load draft %s: %w", key, err)
		}
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil || snap.SavedAt.Before(cutoff) {
			out = append(out, userID)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan drafts: %w", err)
	}
	return out, nil
}
