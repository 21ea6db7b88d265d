package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

const resultKeyPrefix = "aadhaar:verification:"

// Cache remembers verdicts by the hex SHA-1 of the uploaded image.
type Cache interface {
	// Lookup reports found=false with a nil error on a miss.
	Lookup(ctx context.Context, imageHash string) (aadhaar.VerificationResult, bool, error)
	Remember(ctx context.Context, imageHash string, result aadhaar.VerificationResult, ttl time.Duration) error
}

// RedisCache stores verdicts as JSON strings in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Lookup fetches the verdict stored for imageHash.
func (c *RedisCache) Lookup(ctx context.Context, imageHash string) (aadhaar.VerificationResult, bool, error) {
	raw, err := c.client.Get(ctx, resultKey(imageHash)).Result()
	if errors.Is(err, redis.Nil) {
		return aadhaar.VerificationResult{}, false, nil
	}
	if err != nil {
		return aadhaar.VerificationResult{}, false, err
	}
	result, err := decodeResult(raw)
	if err != nil {
		return aadhaar.VerificationResult{}, false, err
	}
	return result, true, nil
}

// Remember stores result under imageHash for ttl.
func (c *RedisCache) Remember(ctx context.Context, imageHash string, result aadhaar.VerificationResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(imageHash), payload, ttl).Err()
}

func resultKey(imageHash string) string {
	return resultKeyPrefix + imageHash
}

// errCorruptEntry marks cached values that no longer decode. It is not
// transient, so it is never retried.
var errCorruptEntry = errors.New("corrupt cache entry")

func decodeResult(raw string) (aadhaar.VerificationResult, error) {
	var result aadhaar.VerificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return aadhaar.VerificationResult{}, fmt.Errorf("%w: %v", errCorruptEntry, err)
	}
	return result, nil
}
