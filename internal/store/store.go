// Package store persists ranking runs to PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Paintersrp/linkrank/internal/services/rank"
)

const schema = `
CREATE TABLE IF NOT EXISTS rank_runs (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL,
	documents   INTEGER NOT NULL,
	nodes       INTEGER NOT NULL,
	edges       INTEGER NOT NULL,
	iterations  INTEGER NOT NULL,
	converged   BOOLEAN NOT NULL,
	final_delta DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS rank_scores (
	run_id     UUID NOT NULL REFERENCES rank_runs (id) ON DELETE CASCADE,
	document   TEXT NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	out_degree INTEGER NOT NULL,
	in_degree  INTEGER NOT NULL,
	PRIMARY KEY (run_id, document)
);
`

const insertRun = `INSERT INTO rank_runs
	(id, started_at, duration_ms, documents, nodes, edges, iterations, converged, final_delta)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const insertScore = `INSERT INTO rank_scores
	(run_id, document, score, out_degree, in_degree)
	VALUES ($1, $2, $3, $4, $5)`

type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store writes runs through a pgx connection pool.
type Store struct {
	db    conn
	close func()
}

// New connects to the database at dsn.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool, close: pool.Close}, nil
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate rank tables: %w", err)
	}
	return nil
}

// Record stores the run and one score row per document in a single batch.
func (s *Store) Record(ctx context.Context, run *rank.Run) error {
	if run == nil || run.Result == nil {
		return errors.New("record run: incomplete run")
	}

	batch := &pgx.Batch{}
	batch.Queue(insertRun,
		run.ID,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.Documents,
		run.Graph.Len(),
		run.Graph.EdgeCount(),
		run.Result.Iterations,
		run.Result.Converged,
		run.Result.Delta,
	)
	for _, name := range run.Graph.Nodes() {
		batch.Queue(insertScore,
			run.ID,
			name,
			run.Result.Ranks[name],
			run.OutDegrees[name],
			run.InDegrees[name],
		)
	}

	results := s.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("record run %s: %w", run.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s != nil && s.close != nil {
		s.close()
	}
	return nil
}
