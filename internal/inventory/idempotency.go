package inventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idempotency:inventory-transaction:"

// IdempotencyRecord is what an Idempotency-Key holds: the fingerprint of
// the request that claimed it and, once that request succeeded, its
// response.
type IdempotencyRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Response    json.RawMessage `json:"response,omitempty"`
}

// Pending reports whether the claiming request is still running.
func (r *IdempotencyRecord) Pending() bool {
	return len(r.Response) == 0
}

// IdempotencyStore remembers the response of a transaction request under
// its Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims key for the request with the given fingerprint. It
	// returns false when the key was already claimed.
	Reserve(ctx context.Context, key, fingerprint string) (bool, error)
	// Lookup returns nil when the key is unknown.
	Lookup(ctx context.Context, key string) (*IdempotencyRecord, error)
	Complete(ctx context.Context, key, fingerprint string, response []byte) error
	// Release drops a reservation whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// requestFingerprint hashes the decoded request, so formatting differences
// in the raw body do not matter.
func requestFingerprint(body *ApplyTransactionRequest) (string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{client: client, ttl: ttl}
}

func (r *RedisIdempotency) Reserve(ctx context.Context, key, fingerprint string) (bool, error) {
	encoded, err := json.Marshal(IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	return r.client.SetNX(ctx, idempotencyKeyPrefix+key, encoded, r.ttl).Result()
}

func (r *RedisIdempotency) Lookup(ctx context.Context, key string) (*IdempotencyRecord, error) {
	v, err := r.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record %s: %w", key, err)
	}
	return &rec, nil
}

func (r *RedisIdempotency) Complete(ctx context.Context, key, fingerprint string, response []byte) error {
	encoded, err := json.Marshal(IdempotencyRecord{Fingerprint: fingerprint, Response: response})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, idempotencyKeyPrefix+key, encoded, r.ttl).Err()
}

func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
