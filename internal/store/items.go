package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rfportal/internal/domain/character"
)

const itemSchema = "rf_item"

type ItemStore struct {
	pool   *pgxpool.Pool
	tables map[string]struct{}
}

func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	tables := make(map[string]struct{})
	for _, t := range character.ItemTables() {
		tables[t] = struct{}{}
	}
	return &ItemStore{pool: pool, tables: tables}
}

// Lookup fetches display metadata for ids from one item table in a single
// round trip. Ids with no row are absent from the result.
func (s *ItemStore) Lookup(ctx context.Context, table string, ids []int32) (map[int32]character.ItemMeta, error) {
	if _, ok := s.tables[table]; !ok {
		return nil, fmt.Errorf("unknown item table %q", table)
	}
	out := make(map[int32]character.ItemMeta, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ident := pgx.Identifier{itemSchema, table}.Sanitize()
	rows, err := s.pool.Query(ctx, `SELECT item_id, item_name, icon FROM `+ident+` WHERE item_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int32
		var m character.ItemMeta
		if err := rows.Scan(&id, &m.Name, &m.Icon); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out[id] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}
