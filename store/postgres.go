package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkantrust/payment-api/backend/models"
)

// The CHECK constraints mirror the validation rules so that a write which
// bypassed validation still fails as a constraint violation.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS payments (
	id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name               TEXT NOT NULL CHECK (btrim(name) <> ''),
	address            TEXT NOT NULL CHECK (btrim(address) <> ''),
	credit_card_number TEXT NOT NULL CHECK (credit_card_number ~ '^[0-9]{16}$'),
	expiry             TEXT NOT NULL CHECK (expiry ~ '^[0-9]{2}/[0-9]{2}$'),
	cvv                TEXT NOT NULL CHECK (cvv ~ '^[0-9]{3,4}$'),
	amount             DOUBLE PRECISION NOT NULL CHECK (amount > 0)
)`

// PostgresStore keeps payments in a PostgreSQL table. IDs come from the
// table's identity column.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres connects to dsn and creates the payments table if needed.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, classifyPostgres(err)
	}

	return &PostgresStore{db: pool}, nil
}

// Close closes every connection in the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// Create inserts p and returns it with the generated id.
func (s *PostgresStore) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	query := `
		INSERT INTO payments (name, address, credit_card_number, expiry, cvv, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRow(
		ctx, query, p.Name, p.Address, p.CreditCardNumber, p.Expiry, p.CVV, p.Amount,
	).Scan(&p.ID)
	if err != nil {
		return models.Payment{}, classifyPostgres(err)
	}
	return p, nil
}

// classifyPostgres maps SQLSTATE class 23 (integrity constraint violation) to
// ErrConstraint and everything else to ErrUnavailable.
func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s (%s)", ErrConstraint, pgErr.Message, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
