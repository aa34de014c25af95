package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// InMemoryLimiter keeps daily counters in process memory for local/dev
// use. Counters reset when the process restarts or the day rolls over.
type InMemoryLimiter struct {
	mu       sync.Mutex
	counts   map[string]int
	day      string
	premiums PremiumChecker
	limit    int
	now      func() time.Time
}

func NewInMemoryLimiter(premiums PremiumChecker, dailyLimit int) *InMemoryLimiter {
	return &InMemoryLimiter{
		counts:   make(map[string]int),
		premiums: premiums,
		limit:    dailyLimit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *InMemoryLimiter) Allow(ctx context.Context, userID string) (Decision, error) {
	if l.premiums != nil {
		premium, err := l.premiums.IsPremium(ctx, userID)
		if err != nil {
			log.Printf("ratelimit: premium check failed for %s: %v", userID, err)
		} else if premium {
			return Decision{Allowed: true, Remaining: -1}, nil
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	day := l.now().Format(dayFormat)
	if day != l.day {
		l.counts = make(map[string]int)
		l.day = day
	}

	l.counts[userID]++
	count := l.counts[userID]

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= l.limit, Remaining: remaining}, nil
}

func (l *InMemoryLimiter) Close() error { return nil }
