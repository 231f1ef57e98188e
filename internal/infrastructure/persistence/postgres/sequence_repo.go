package postgres

import (
	"context"
	"fmt"

	pkgpostgres "github.com/microfin/loanbook/pkg/postgres"
)

// SequenceRepo implements port.SequenceRepository on a counters table. The
// increment happens in the database, so concurrent callers never see the
// same value.
type SequenceRepo struct {
	db pkgpostgres.Querier
}

// NewSequenceRepo creates a new PostgreSQL-backed sequence repository.
func NewSequenceRepo(db pkgpostgres.Querier) *SequenceRepo {
	return &SequenceRepo{db: db}
}

// Next returns the next value for the named counter, creating it at 1 on
// first use.
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`
	var value int64
	if err := r.db.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}
