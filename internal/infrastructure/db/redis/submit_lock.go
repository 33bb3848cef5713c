package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmissionLock is a per-principal in-flight marker for application submits.
// Key format: submit-lock:<user_id>
type SubmissionLock struct {
	client *redis.Client
}

func NewSubmissionLock(client *redis.Client) *SubmissionLock {
	return &SubmissionLock{client: client}
}

// Acquire sets the lock only if it is not already held. The TTL bounds how
// long a crashed submission can block the principal.
func (l *SubmissionLock) Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(userID), time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit lock: %w", err)
	}
	return ok, nil
}

func (l *SubmissionLock) Release(ctx context.Context, userID string) error {
	return l.client.Del(ctx, l.key(userID)).Err()
}

func (l *SubmissionLock) key(userID string) string {
	return fmt.Sprintf("submit-lock:%s", userID)
}
