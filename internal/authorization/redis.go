package authorization

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feral-file/ff-bounty-ledger/internal/adapter"
	"github.com/feral-file/ff-bounty-ledger/internal/domain"
)

const (
	nonceKeyPrefix = "authz:nonce:"
	matchKeyPrefix = "authz:match:"
	// expiryKey is a sorted set of pending nonces scored by their expiry in unix milliseconds
	expiryKey = "authz:expiry"
)

// RedisStore keeps pending authorizations in Redis with native key expiry,
// so it can be shared by the process issuing authorizations, the projector clearing them
// and the settlement orchestrator sweeping them.
type RedisStore struct {
	client adapter.RedisClient
	json   adapter.JSON
	clock  adapter.Clock
}

var _ PendingStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis backed pending store
func NewRedisStore(client adapter.RedisClient, json adapter.JSON, clock adapter.Clock) *RedisStore {
	return &RedisStore{client: client, json: json, clock: clock}
}

func (s *RedisStore) Put(ctx context.Context, p *Pending, ttl time.Duration) error {
	if p == nil || p.Nonce == "" {
		return fmt.Errorf("pending authorization has no nonce")
	}

	data, err := s.json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending authorization: %w", err)
	}

	match := matchKeyPrefix + matchKey(p.BountyID, p.Recipient)
	previous, err := s.client.Get(ctx, match).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read pending authorization index: %w", err)
	}

	if err := s.client.Set(ctx, nonceKeyPrefix+p.Nonce, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending authorization: %w", err)
	}
	if err := s.client.Set(ctx, match, p.Nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to index pending authorization: %w", err)
	}
	expiresAt := s.clock.Now().Add(ttl).UnixMilli()
	if err := s.client.ZAdd(ctx, expiryKey, redis.Z{Score: float64(expiresAt), Member: p.Nonce}).Err(); err != nil {
		return fmt.Errorf("failed to track expiry of pending authorization: %w", err)
	}
	if previous != "" && previous != p.Nonce {
		if err := s.client.Del(ctx, nonceKeyPrefix+previous).Err(); err != nil {
			return fmt.Errorf("failed to drop replaced authorization: %w", err)
		}
		if err := s.client.ZRem(ctx, expiryKey, previous).Err(); err != nil {
			return fmt.Errorf("failed to untrack replaced authorization: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, nonce string) (*Pending, error) {
	data, err := s.client.Get(ctx, nonceKeyPrefix+nonce).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired keys are gone, so an unknown and an expired nonce look the same
		return nil, fmt.Errorf("pending authorization %s: %w", nonce, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending authorization: %w", err)
	}

	var p Pending
	if err := s.json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending authorization: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Take(ctx context.Context, bountyID, recipient string) (*Pending, error) {
	match := matchKeyPrefix + matchKey(bountyID, recipient)
	nonce, err := s.client.Get(ctx, match).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending authorization index: %w", err)
	}

	p, err := s.Get(ctx, nonce)
	if errors.Is(err, domain.ErrNotFound) {
		p = nil
	} else if err != nil {
		return nil, err
	}

	if err := s.client.Del(ctx, match, nonceKeyPrefix+nonce).Err(); err != nil {
		return nil, fmt.Errorf("failed to delete pending authorization: %w", err)
	}
	if err := s.client.ZRem(ctx, expiryKey, nonce).Err(); err != nil {
		return nil, fmt.Errorf("failed to untrack pending authorization: %w", err)
	}
	return p, nil
}

// Sweep drops the expiry entries of authorizations that expired unused and returns how many there were.
// Redis already expired their keys.
func (s *RedisStore) Sweep(ctx context.Context) (int, error) {
	now := strconv.FormatInt(s.clock.Now().UnixMilli(), 10)
	dropped, err := s.client.ZRemRangeByScore(ctx, expiryKey, "-inf", now).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to sweep pending authorizations: %w", err)
	}
	return int(dropped), nil
}
