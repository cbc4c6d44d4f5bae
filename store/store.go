// Package store persists validated payments and assigns their identifiers.
//
// Every backend implements the same contract:
//   - Create trusts its input. Callers must run validation.Validate first.
//   - The identifier is assigned atomically inside the backend, so concurrent
//     creates never receive the same ID, and a consumed ID is never handed out
//     again, even if the surrounding request fails afterwards.
//   - Failures are reported as ErrUnavailable or ErrConstraint (wrapped with
//     context) and are never retried here.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkantrust/payment-api/backend/models"
)

var (
	// ErrUnavailable is returned when the backing store cannot be reached or
	// has been closed.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrConstraint is returned when the backing store rejects a write on
	// integrity grounds.
	ErrConstraint = errors.New("storage constraint violation")
)

// Store is the persistence contract for payments.
type Store interface {
	// Create assigns the next identifier to p, persists it and returns the
	// stored record. Any ID already set on p is ignored.
	Create(ctx context.Context, p models.Payment) (models.Payment, error)

	// Close releases the underlying connection or file lock.
	Close() error
}

// Supported drivers.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver      string
	BoltPath    string
	DatabaseURL string
	RedisAddr   string
}

// Open returns the backend named by cfg.Driver. An empty driver means bolt.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", DriverBolt:
		s, err = NewBolt(cfg.BoltPath)
	case DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	case DriverRedis:
		s, err = NewRedis(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Kind names the failure class of err for logs and metrics.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConstraint):
		return "ConstraintViolation"
	case errors.Is(err, ErrUnavailable):
		return "StorageUnavailable"
	default:
		return "Unknown"
	}
}
