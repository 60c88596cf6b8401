package adapter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient defines the subset of Redis operations used for expiring state to enable mocking.
// *redis.Client satisfies it directly.
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisClient=MockRedisClient
type RedisClient interface {
	// Ping checks if Redis is reachable
	Ping(ctx context.Context) *redis.StatusCmd

	// Set stores a value with an expiration (0 = no expiry)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd

	// Get reads a value; a missing key yields redis.Nil
	Get(ctx context.Context, key string) *redis.StringCmd

	// Del deletes keys
	Del(ctx context.Context, keys ...string) *redis.IntCmd

	// ZAdd adds members to a sorted set
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd

	// ZRem removes members from a sorted set
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd

	// ZRemRangeByScore removes the members scored within [min, max] and returns how many
	ZRemRangeByScore(ctx context.Context, key, min, max string) *redis.IntCmd

	// Close closes the Redis connection
	Close() error
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) RedisClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
