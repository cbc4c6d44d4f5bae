package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/arkantrust/payment-api/backend/models"
)

const bucketName = "payments"

// BoltStore keeps payments in an embedded BoltDB file.
//
// IDs come from the bucket's own sequence, which is advanced inside the same
// write transaction as the insert and survives restarts. Bolt serialises
// writers, so two concurrent Creates can never observe the same sequence value.
type BoltStore struct {
	db *bolt.DB
}

// NewBolt opens (or creates) a BoltDB database at the given path and ensures
// the payments bucket exists.
func NewBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bucket: %v", ErrUnavailable, err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Create persists p under the next sequence number.
//
// Bolt has no context-aware API; ctx is only checked before the transaction
// starts.
func (s *BoltStore) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return models.Payment{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("%w: bucket %q missing", ErrUnavailable, bucketName)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if seq > math.MaxInt64 {
			return fmt.Errorf("%w: id sequence exhausted", ErrConstraint)
		}
		p.ID = int64(seq)

		key := idKey(p.ID)
		if b.Get(key) != nil {
			return fmt.Errorf("%w: id %d already exists", ErrConstraint, p.ID)
		}

		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		return models.Payment{}, classifyBolt(err)
	}

	return p, nil
}

// idKey encodes id big-endian so that keys sort in creation order.
func idKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

func classifyBolt(err error) error {
	switch {
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrConstraint):
		return err
	case errors.Is(err, bolt.ErrKeyRequired),
		errors.Is(err, bolt.ErrKeyTooLarge),
		errors.Is(err, bolt.ErrValueTooLarge),
		errors.Is(err, bolt.ErrIncompatibleValue):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	default:
		// ErrDatabaseNotOpen, ErrTxClosed, I/O failures and the like.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
