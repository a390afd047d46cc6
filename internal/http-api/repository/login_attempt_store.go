package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptStore tracks consecutive failed logins per account so the auth
// service can lock accounts out after too many failures.
type LoginAttemptStore interface {
	// RecordFailure bumps the failure counter and returns its new value.
	// The counter expires after the lockout window.
	RecordFailure(ctx context.Context, email string) (int64, error)
	Failures(ctx context.Context, email string) (int64, error)
	Reset(ctx context.Context, email string) error
}

type redisLoginAttemptStore struct {
	client  *redis.Client
	lockout time.Duration
}

func NewLoginAttemptStore(client *redis.Client, lockout time.Duration) LoginAttemptStore {
	return &redisLoginAttemptStore{client: client, lockout: lockout}
}

func attemptKey(email string) string {
	return "login_attempts:" + email
}

func (s *redisLoginAttemptStore) RecordFailure(ctx context.Context, email string) (int64, error) {
	key := attemptKey(email)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	// set the window on the first failure; later failures ride it out
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.lockout).Err(); err != nil {
			return count, fmt.Errorf("set lockout window: %w", err)
		}
	}
	return count, nil
}

func (s *redisLoginAttemptStore) Failures(ctx context.Context, email string) (int64, error) {
	count, err := s.client.Get(ctx, attemptKey(email)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read login failures: %w", err)
	}
	return count, nil
}

func (s *redisLoginAttemptStore) Reset(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, attemptKey(email)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
