package ratelimit

import "context"

// Decision is the outcome of a limit check. Remaining is -1 for
// unlimited (premium) accounts.
type Decision struct {
	Allowed   bool
	Remaining int
}

// PremiumChecker answers whether a user bypasses the daily limit.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// Limiter enforces the daily free-message budget.
type Limiter interface {
	Allow(ctx context.Context, userID string) (Decision, error)
	Close() error
}
