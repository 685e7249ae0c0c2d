package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/lostfound/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ScopeChallenge prefixes the per-item cooldown set after a wrong challenge
// response.
const ScopeChallenge = "challenge"

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Is(target error) bool {
	return target == apperror.ErrTooManyRequests
}

// Key builds the redis key for a user, scope and optional subject id.
func Key(userID uuid.UUID, scope string, subject uuid.UUID) string {
	if subject == uuid.Nil {
		return fmt.Sprintf("rate_limit:user:%s:%s", userID, scope)
	}
	return fmt.Sprintf("rate_limit:user:%s:%s:%s", userID, scope, subject)
}

// CheckAndSetRateLimit takes the lock for key. It reports false when the lock
// is already held. A nil client always allows.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, key string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// GetRateLimitTTL returns how long key stays locked, or zero when it is free.
func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, key string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// -2 missing, -1 no expiry
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}
