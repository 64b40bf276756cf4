package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityPilot/internal/model"
)

// Store provides Postgres persistence for run history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutOutcomes inserts or updates transaction outcome records.
func (s *Store) PutOutcomes(ctx context.Context, outcomes []model.TxOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, o := range outcomes {
		batch.Queue(`
			INSERT INTO tx_outcomes (
				run_id, step, tx_hash, confirmed, block_number, gas_used, submitted_at, confirmed_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (tx_hash)
			DO UPDATE SET
				confirmed = EXCLUDED.confirmed,
				block_number = EXCLUDED.block_number,
				gas_used = EXCLUDED.gas_used,
				confirmed_at = EXCLUDED.confirmed_at,
				updated_at = now()
		`,
			o.RunID,
			o.Step,
			o.Hash,
			o.Confirmed,
			int64(o.BlockNumber),
			int64(o.GasUsed),
			o.SubmittedAt,
			o.ConfirmedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range outcomes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
