package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const MaxOTPAttempts = 5

const (
	fieldHash     = "hash"
	fieldAttempts = "attempts"
)

type RedisOTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOTPStore(client *redis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{
		client: client,
		ttl:    ttl,
	}
}

// Save replaces any pending code for the email and resets the attempt counter.
func (r *RedisOTPStore) Save(ctx context.Context, email string, codeHash string) error {
	key := otpKey(email)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldHash, codeHash, fieldAttempts, 0)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save otp failed: %w", err)
	}
	return nil
}

func (r *RedisOTPStore) Attempt(ctx context.Context, email string) (string, error) {
	key := otpKey(email)

	pipe := r.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, fieldAttempts, 1)
	get := pipe.HGet(ctx, key, fieldHash)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis otp attempt failed: %w", err)
	}

	hash, err := get.Result()
	if errors.Is(err, redis.Nil) {
		// HINCRBY recreated an expired key without a TTL
		_ = r.client.Del(ctx, key).Err()
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get otp failed: %w", err)
	}

	if incr.Val() > MaxOTPAttempts {
		_ = r.client.Del(ctx, key).Err()
		return "", ErrOTPTooManyAttempts
	}
	return hash, nil
}

func (r *RedisOTPStore) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete otp failed: %w", err)
	}
	return nil
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}
