package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteTaxonomyRepo is the SQLite store of admin-curated vocabularies.
type SQLiteTaxonomyRepo struct {
	db *sql.DB
}

func NewSQLiteTaxonomyRepo(db *sql.DB) *SQLiteTaxonomyRepo {
	return &SQLiteTaxonomyRepo{db: db}
}

func (r *SQLiteTaxonomyRepo) Get(ctx context.Context, typ string) ([]string, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT items FROM taxonomy WHERE type = ?`, typ).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get taxonomy %s: %w", typ, err)
	}
	items, err := decodeItems(typ, raw)
	return items, err == nil, err
}

func (r *SQLiteTaxonomyRepo) Set(ctx context.Context, typ string, items []string) error {
	raw, err := encodeItems(items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO taxonomy (type, items) VALUES (?, ?)
		ON CONFLICT (type) DO UPDATE SET items = excluded.items
	`, typ, string(raw))
	if err != nil {
		return fmt.Errorf("set taxonomy %s: %w", typ, err)
	}
	return nil
}
