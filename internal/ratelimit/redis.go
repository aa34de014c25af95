package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const dayFormat = "20060102"

// RedisLimiter counts daily turns in Redis so the budget survives
// restarts and is shared across replicas.
type RedisLimiter struct {
	client   *redis.Client
	premiums PremiumChecker
	limit    int
	now      func() time.Time
}

func NewRedisLimiter(client *redis.Client, premiums PremiumChecker, dailyLimit int) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		premiums: premiums,
		limit:    dailyLimit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *RedisLimiter) key(userID string) string {
	return fmt.Sprintf("dearx:turns:%s:%s", userID, l.now().Format(dayFormat))
}

func (l *RedisLimiter) Allow(ctx context.Context, userID string) (Decision, error) {
	if l.premiums != nil {
		premium, err := l.premiums.IsPremium(ctx, userID)
		if err != nil {
			// A broken profile lookup should not block chatting.
			log.Printf("ratelimit: premium check failed for %s: %v", userID, err)
		} else if premium {
			return Decision{Allowed: true, Remaining: -1}, nil
		}
	}

	key := l.key(userID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr daily counter: %w", err)
	}
	if count == 1 {
		// Counters only matter for the current day; 48h covers clock skew.
		if err := l.client.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
			log.Printf("ratelimit: expire failed for %s: %v", key, err)
		}
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: int(count) <= l.limit, Remaining: remaining}, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
