package ratelimit

import (
	"strings"

	"github.com/redis/go-redis/v9"
)

// New creates a redis-backed limiter when an address is configured,
// otherwise in-memory.
func New(redisAddr string, premiums PremiumChecker, dailyLimit int) Limiter {
	if strings.TrimSpace(redisAddr) == "" {
		return NewInMemoryLimiter(premiums, dailyLimit)
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	return NewRedisLimiter(client, premiums, dailyLimit)
}
