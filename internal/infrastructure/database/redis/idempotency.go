// internal/infrastructure/database/redis/idempotency.go
package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrIdempotencyInProgress is returned when another request holds the key
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is in progress")
)

// releaseScript deletes the lock only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// StoredResponse is the replayable outcome of a completed request.
// Fingerprint identifies the request body the response was produced for.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// IdempotencyStore records responses per Idempotency-Key so retries replay them
type IdempotencyStore struct {
	client  *Client
	ttl     time.Duration
	lockTTL time.Duration
	prefix  string
}

// Reservation is the in-flight claim on a key returned by Begin
type Reservation struct {
	key   string
	token string
}

// NewIdempotencyStore creates a store keeping responses for ttl
func NewIdempotencyStore(client *Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		ttl:     ttl,
		lockTTL: 30 * time.Second,
		prefix:  "idempotency:",
	}
}

// Fingerprint returns a hex blake2b-256 digest of data
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digest keeps Redis keys a fixed length whatever the client sent
func digest(key string) string {
	return Fingerprint([]byte(key))
}

func (s *IdempotencyStore) responseKey(key string) string {
	return s.prefix + "response:" + digest(key)
}

func (s *IdempotencyStore) lockKey(key string) string {
	return s.prefix + "lock:" + digest(key)
}

// Begin looks up key. A stored response is returned for replay; otherwise the key is
// claimed for this request and the returned Reservation must be completed or aborted.
// A key claimed by someone else yields ErrIdempotencyInProgress.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (*StoredResponse, *Reservation, error) {
	stored, err := s.lookup(ctx, key)
	if err != nil || stored != nil {
		return stored, nil, err
	}

	token := uuid.New().String()
	ok, err := s.client.Redis.SetNX(ctx, s.lockKey(key), token, s.lockTTL).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !ok {
		return nil, nil, ErrIdempotencyInProgress
	}

	// The first holder may have finished between lookup and SetNX.
	stored, err = s.lookup(ctx, key)
	if err != nil || stored != nil {
		_ = s.release(ctx, key, token)
		return stored, nil, err
	}

	return nil, &Reservation{key: key, token: token}, nil
}

// Complete stores the response for replay and releases the claim
func (s *IdempotencyStore) Complete(ctx context.Context, r *Reservation, resp StoredResponse) error {
	if err := s.client.SetJSON(ctx, s.responseKey(r.key), resp, s.ttl); err != nil {
		_ = s.release(ctx, r.key, r.token)
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return s.release(ctx, r.key, r.token)
}

// Abort releases the claim without storing anything so the key can be retried
func (s *IdempotencyStore) Abort(ctx context.Context, r *Reservation) error {
	return s.release(ctx, r.key, r.token)
}

func (s *IdempotencyStore) lookup(ctx context.Context, key string) (*StoredResponse, error) {
	var stored StoredResponse
	err := s.client.GetJSON(ctx, s.responseKey(key), &stored)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotent response: %w", err)
	}
	return &stored, nil
}

func (s *IdempotencyStore) release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client.Redis, []string{s.lockKey(key)}, token).Err()
}
