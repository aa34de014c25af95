package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process history store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	records  map[string][]MessageRecord
	premiums map[string]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:  make(map[string][]MessageRecord),
		premiums: make(map[string]time.Time),
	}
}

func (s *InMemoryStore) SaveMessage(_ context.Context, record MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.records[record.UserID] = append(s.records[record.UserID], record)
	return nil
}

func (s *InMemoryStore) RecentMessages(_ context.Context, userID, personID string, limit int) ([]MessageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []MessageRecord
	for _, r := range s.records[userID] {
		if r.PersonID == personID {
			matched = append(matched, r)
		}
	}
	if limit <= 0 || limit > len(matched) {
		limit = len(matched)
	}
	return matched[len(matched)-limit:], nil
}

func (s *InMemoryStore) CountUserMessagesSince(_ context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.records[userID] {
		if r.Role == "user" && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) IsPremium(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expires, ok := s.premiums[userID]
	if !ok {
		return false, nil
	}
	return expires.After(time.Now().UTC()), nil
}

// SetPremium marks a user premium until the given time. Test hook.
func (s *InMemoryStore) SetPremium(userID string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.premiums[userID] = until
}

func (s *InMemoryStore) Close() error { return nil }
