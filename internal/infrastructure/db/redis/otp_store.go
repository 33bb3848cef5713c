package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

const (
	otpFieldHash     = "hash"
	otpFieldAttempts = "attempts"
)

// OTPStore keeps hashed one-time passcodes in a Redis hash per email.
// Key format: otp:<email>
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Save replaces any pending code for email and resets its attempt counter.
func (s *OTPStore) Save(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	key := s.key(email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, otpFieldHash, codeHash, otpFieldAttempts, 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, email string) (string, int, error) {
	vals, err := s.client.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return "", 0, fmt.Errorf("get otp: %w", err)
	}
	hash, ok := vals[otpFieldHash]
	if !ok {
		return "", 0, domain.ErrOTPExpired
	}
	attempts, _ := strconv.Atoi(vals[otpFieldAttempts])
	return hash, attempts, nil
}

func (s *OTPStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	key := s.key(email)
	// HINCRBY would recreate an expired key without a TTL.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("otp attempts: %w", err)
	}
	if exists == 0 {
		return 0, domain.ErrOTPExpired
	}
	n, err := s.client.HIncrBy(ctx, key, otpFieldAttempts, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("otp attempts: %w", err)
	}
	return int(n), nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}

func (s *OTPStore) key(email string) string {
	return "otp:" + strings.ToLower(email)
}
