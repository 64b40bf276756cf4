package storage

import (
	"context"

	"liquidityPilot/internal/model"
)

// Journal defines a sink for transaction outcome records.
type Journal interface {
	PutOutcomes(ctx context.Context, outcomes []model.TxOutcome) error
}

// NopJournal discards outcomes. Used when journaling is disabled.
type NopJournal struct{}

func (NopJournal) PutOutcomes(context.Context, []model.TxOutcome) error { return nil }

// Multi fans outcomes out to several journals, returning the first error.
type Multi []Journal

func (m Multi) PutOutcomes(ctx context.Context, outcomes []model.TxOutcome) error {
	for _, journal := range m {
		if err := journal.PutOutcomes(ctx, outcomes); err != nil {
			return err
		}
	}
	return nil
}
