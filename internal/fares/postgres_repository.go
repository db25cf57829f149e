package fares

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository backed by
// the fare_table table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL fare repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListEntries retrieves all fare entries.
func (r *PostgresRepository) ListEntries(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT tier, cents, COALESCE(symbol, ''), COALESCE(note, ''), updated_at
		FROM fare_table
		ORDER BY tier
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query fare_table: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Tier, &e.Cents, &e.Symbol, &e.Note, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fare_table: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReplaceEntries swaps the whole table for entries in one transaction.
func (r *PostgresRepository) ReplaceEntries(ctx context.Context, entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	if _, err := tx.Exec(ctx, `DELETE FROM fare_table`); err != nil {
		return err
	}

	query := `
		INSERT INTO fare_table (tier, cents, symbol, note, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
	`
	now := time.Now()
	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.Tier, e.Cents, e.Symbol, e.Note, now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Writer     = (*PostgresRepository)(nil)
)
