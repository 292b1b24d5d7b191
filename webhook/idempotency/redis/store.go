package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

/* Redis implementation of idempotency.Store
 * Processed markers are plain keys with the retention horizon as TTL,
 * claims are short-lived NX keys so a crashed worker cannot hold an id
 * hostage for longer than the claim TTL.
 */

const (
	processedPrefix = "webhook:processed" // webhook:processed:{event_id}
	claimPrefix     = "webhook:inflight"  // webhook:inflight:{event_id}

	// DefaultRetention is how long processed markers are kept. Provider
	// redelivery stops well within this window.
	DefaultRetention = 72 * time.Hour

	// DefaultClaimTTL bounds how long an in-flight claim survives a crash
	DefaultClaimTTL = 2 * time.Minute
)

type Store struct {
	client    *redis.Client
	retention time.Duration
	claimTTL  time.Duration
}

// NewStore creates a Redis-backed idempotency store and checks the connection.
func NewStore(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Store{
		client:    client,
		retention: DefaultRetention,
		claimTTL:  DefaultClaimTTL,
	}, nil
}

// NewStoreWithClient wraps an existing client; used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{
		client:    client,
		retention: DefaultRetention,
		claimTTL:  DefaultClaimTTL,
	}
}

// Seen reports whether the event id has a processed marker.
func (s *Store) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, processedKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("checking processed marker: %w", err)
	}
	return n > 0, nil
}

// Begin claims the event id. SET NX on the claim key is the atomic
// check-and-insert; a processed marker refuses the claim outright.
func (s *Store) Begin(ctx context.Context, id string) (bool, error) {
	seen, err := s.Seen(ctx, id)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	claimed, err := s.client.SetNX(ctx, claimKey(id), time.Now().Unix(), s.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claiming event: %w", err)
	}
	if !claimed {
		return false, nil
	}

	// The claim may have raced a Commit; re-check and back out if so.
	seen, err = s.Seen(ctx, id)
	if err != nil || seen {
		s.client.Del(ctx, claimKey(id))
		return false, err
	}

	return true, nil
}

// Commit writes the processed marker and drops the claim.
func (s *Store) Commit(ctx context.Context, id string, at time.Time) error {
	err := s.client.Set(ctx, processedKey(id), at.Unix(), s.retention).Err()
	if err != nil {
		return fmt.Errorf("writing processed marker: %w", err)
	}
	if err := s.client.Del(ctx, claimKey(id)).Err(); err != nil {
		return fmt.Errorf("releasing claim: %w", err)
	}
	return nil
}

// Release drops the claim without marking the id processed.
func (s *Store) Release(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, claimKey(id)).Err(); err != nil {
		return fmt.Errorf("releasing claim: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

func processedKey(id string) string {
	return fmt.Sprintf("%s:%s", processedPrefix, id)
}

func claimKey(id string) string {
	return fmt.Sprintf("%s:%s", claimPrefix, id)
}
