// Package store reads and writes the game server's tables through the shared
// pgx pool. Lookups that find nothing return a nil result and a nil error.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// slotColumns renders prefix0..prefix{n-1} with NULLs folded to def.
func slotColumns(alias, prefix string, n int, def int) string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("COALESCE(%s%s%d, %d)", alias, prefix, i, def)
	}
	return strings.Join(cols, ", ")
}

func int64Dests(dst []int64) []any {
	out := make([]any, len(dst))
	for i := range dst {
		out[i] = &dst[i]
	}
	return out
}
