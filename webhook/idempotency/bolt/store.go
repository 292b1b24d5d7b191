package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"time"

	bolt "github.com/boltdb/bolt"
)

/* BoltDB implementation of idempotency.Store
 * Processed markers survive restarts in a single embedded file, so a
 * redeployed service still refuses events it already applied. In-flight
 * claims stay process-local: a crash drops them, which is exactly the
 * redelivery semantics we want.
 */

const (
	processedBucket = "processed" // event_id -> unix seconds
	orderBucket     = "order"     // insertion seq (big endian) -> event_id

	// DefaultCapacity bounds how many processed ids are retained
	DefaultCapacity = 1000
)

type Store struct {
	db       *bolt.DB
	capacity int

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewStore opens (or creates) the database file and ensures buckets exist.
// A non-positive capacity falls back to DefaultCapacity.
func NewStore(path string, capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(processedBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(orderBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{
		db:       db,
		capacity: capacity,
		inFlight: make(map[string]struct{}),
	}, nil
}

// Seen reports whether the event id has a persisted processed marker.
func (s *Store) Seen(_ context.Context, id string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket([]byte(processedBucket)).Get([]byte(id)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("checking processed marker: %w", err)
	}
	return seen, nil
}

// Begin claims the event id. The persisted check and the in-memory claim
// share one critical section so concurrent duplicates cannot both win.
func (s *Store) Begin(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inFlight[id]; ok {
		return false, nil
	}

	seen, err := s.Seen(ctx, id)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	s.inFlight[id] = struct{}{}
	return true, nil
}

// Commit persists the processed marker, trims past capacity oldest-first
// and drops the claim.
func (s *Store) Commit(_ context.Context, id string, at time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		processed := tx.Bucket([]byte(processedBucket))
		order := tx.Bucket([]byte(orderBucket))

		if processed.Get([]byte(id)) != nil {
			return nil
		}

		seq, err := order.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}
		if err := order.Put(seqKey(seq), []byte(id)); err != nil {
			return fmt.Errorf("recording insertion order: %w", err)
		}
		if err := processed.Put([]byte(id), []byte(strconv.FormatInt(at.Unix(), 10))); err != nil {
			return fmt.Errorf("writing processed marker: %w", err)
		}

		// Insertion-order eviction, oldest first. Bucket stats lag the
		// open transaction, so count the order entries directly.
		count := 0
		cursor := order.Cursor()
		for key, _ := cursor.First(); key != nil; key, _ = cursor.Next() {
			count++
		}
		for excess := count - s.capacity; excess > 0; excess-- {
			key, oldest := cursor.First()
			if key == nil {
				break
			}
			if err := processed.Delete(oldest); err != nil {
				return fmt.Errorf("evicting processed marker: %w", err)
			}
			if err := order.Delete(key); err != nil {
				return fmt.Errorf("evicting order entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("committing event %s: %w", id, err)
	}

	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
	return nil
}

// Release drops the in-memory claim without persisting anything.
func (s *Store) Release(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
	return nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
