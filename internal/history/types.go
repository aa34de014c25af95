package history

import (
	"context"
	"time"
)

// MessageRecord stores a single user or assistant chat message.
// Assistant records may carry the URL of a photo sent with the reply.
type MessageRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PersonID  string    `json:"person_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists chat history and answers the account questions the
// rate limiter needs.
type Store interface {
	SaveMessage(ctx context.Context, record MessageRecord) error
	RecentMessages(ctx context.Context, userID, personID string, limit int) ([]MessageRecord, error)
	CountUserMessagesSince(ctx context.Context, userID string, since time.Time) (int, error)
	IsPremium(ctx context.Context, userID string) (bool, error)
	Close() error
}
