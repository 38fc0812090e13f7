package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TaxonomyRepo is the PostgreSQL store of admin-curated vocabularies.
type TaxonomyRepo struct {
	pool PgxQuerier
}

func NewTaxonomyRepo(pool PgxQuerier) *TaxonomyRepo {
	return &TaxonomyRepo{pool: pool}
}

// Get returns the stored items of one vocabulary; ok is false when it was never set.
func (r *TaxonomyRepo) Get(ctx context.Context, typ string) ([]string, bool, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT items::text FROM taxonomy WHERE type = $1`, typ).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get taxonomy %s: %w", typ, err)
	}
	items, err := decodeItems(typ, raw)
	return items, err == nil, err
}

func (r *TaxonomyRepo) Set(ctx context.Context, typ string, items []string) error {
	raw, err := encodeItems(items)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO taxonomy (type, items) VALUES ($1, $2)
		ON CONFLICT (type) DO UPDATE SET items = excluded.items
	`, typ, raw)
	if err != nil {
		return fmt.Errorf("set taxonomy %s: %w", typ, err)
	}
	return nil
}

func encodeItems(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode taxonomy items: %w", err)
	}
	return raw, nil
}

func decodeItems(typ, raw string) ([]string, error) {
	items := []string{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode taxonomy %s: %w", typ, err)
	}
	return items, nil
}
