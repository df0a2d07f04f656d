package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound means the state row has never been written.
var ErrNotFound = errors.New("project: state not found")

// stateRowID is the primary key of the single state row. The whole
// application state travels as one JSONB document; last writer wins.
const stateRowID = "main"

// Repository persists the application state wholesale.
type Repository interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) (*Store, error)
	Save(ctx context.Context, store *Store) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a Postgres pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS quote_state (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (r *repository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("project: create table: %w", err)
	}
	return nil
}

func (r *repository) Load(ctx context.Context) (*Store, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM quote_state WHERE id = $1`, stateRowID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("project: load state: %w", err)
	}

	var store Store
	if err := json.Unmarshal(raw, &store); err != nil {
		return nil, fmt.Errorf("project: decode state: %w", err)
	}
	for i := range store.Projects {
		Normalize(&store.Projects[i])
	}
	return &store, nil
}

func (r *repository) Save(ctx context.Context, store *Store) error {
	raw, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("project: encode state: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO quote_state (id, data, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		stateRowID, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("project: save state: %w", err)
	}
	return nil
}
