package ratelimit

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process CounterStore for single-instance deployments
// and deterministic tests. It mirrors the sorted-set semantics of RedisStore:
// members ordered by score, per-key TTL, inclusive score ranges.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]*memoryKey
}

type memoryKey struct {
	entries   []memoryEntry
	expiresAt time.Time
}

type memoryEntry struct {
	score  int64
	member string
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]*memoryKey)}
}

func (s *MemoryStore) RangeByScore(ctx context.Context, key string, min, max int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.live(key)
	if k == nil {
		return nil, nil
	}

	var members []string
	for _, e := range k.entries {
		if e.score >= min && e.score <= max {
			members = append(members, e.member)
		}
	}
	return members, nil
}

func (s *MemoryStore) Add(ctx context.Context, key string, score int64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.live(key)
	if k == nil {
		k = &memoryKey{}
		s.keys[key] = k
	}

	// Set semantics: re-adding a member updates its score.
	for i := range k.entries {
		if k.entries[i].member == member {
			k.entries[i].score = score
			s.resort(k)
			return nil
		}
	}

	k.entries = append(k.entries, memoryEntry{score: score, member: member})
	s.resort(k)
	return nil
}

func (s *MemoryStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k := s.live(key); k != nil {
		k.expiresAt = time.Now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the prefix form used by cleanup ("prefix:*") is supported.
	prefix := strings.TrimSuffix(pattern, "*")

	var matched []string
	for key := range s.keys {
		if strings.HasPrefix(key, prefix) && s.live(key) != nil {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

func (s *MemoryStore) RemoveByScoreRange(ctx context.Context, key string, min, max int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.live(key)
	if k == nil {
		return nil
	}

	kept := k.entries[:0]
	for _, e := range k.entries {
		if e.score < min || e.score > max {
			kept = append(kept, e)
		}
	}
	k.entries = kept
	if len(k.entries) == 0 {
		delete(s.keys, key)
	}
	return nil
}

// Count returns the number of live members under a key. Test helper.
func (s *MemoryStore) Count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k := s.live(key); k != nil {
		return len(k.entries)
	}
	return 0
}

// live returns the key's state, evicting it first if its TTL has lapsed.
// Callers must hold the mutex.
func (s *MemoryStore) live(key string) *memoryKey {
	k, ok := s.keys[key]
	if !ok {
		return nil
	}
	if !k.expiresAt.IsZero() && time.Now().After(k.expiresAt) {
		delete(s.keys, key)
		return nil
	}
	return k
}

func (s *MemoryStore) resort(k *memoryKey) {
	sort.Slice(k.entries, func(i, j int) bool { return k.entries[i].score < k.entries[j].score })
}

// Ensure MemoryStore implements CounterStore
var _ CounterStore = (*MemoryStore)(nil)
