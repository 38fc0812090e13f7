package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/icar-directory/backend/internal/models"
)

// SQLiteRecordRepo is the SQLite record store, used for local runs and tests.
type SQLiteRecordRepo struct {
	db *sql.DB
}

func NewSQLiteRecordRepo(db *sql.DB) *SQLiteRecordRepo {
	return &SQLiteRecordRepo{db: db}
}

func (r *SQLiteRecordRepo) Get(ctx context.Context, entityType models.EntityType, id string) (models.Fields, error) {
	t, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	targets := t.scanTargets()
	err = r.db.QueryRowContext(ctx, t.selectSQL(sqliteDialect, "id = ?"), id).Scan(targets...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", entityType, id, err)
	}
	_, fields, err := t.decode(targets)
	return fields, err
}

func (r *SQLiteRecordRepo) List(ctx context.Context, entityType models.EntityType) ([]string, []models.Fields, error) {
	t, err := tableFor(entityType)
	if err != nil {
		return nil, nil, err
	}
	rows, err := r.db.QueryContext(ctx, t.selectSQL(sqliteDialect, ""))
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", entityType, err)
	}
	defer rows.Close()

	var ids []string
	var records []models.Fields
	for rows.Next() {
		targets := t.scanTargets()
		if err := rows.Scan(targets...); err != nil {
			return nil, nil, err
		}
		id, fields, err := t.decode(targets)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		records = append(records, fields)
	}
	return ids, records, rows.Err()
}

func (r *SQLiteRecordRepo) Apply(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		var exists bool
		err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", t.name), id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("apply %s %s: %w", entityType, id, err)
		}
		if !exists {
			return ErrNotFound
		}
		return nil
	}

	q, args, err := t.updateSQL(sqliteDialect, id, fields)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("apply %s %s: %w", entityType, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply %s %s: %w", entityType, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRecordRepo) Create(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	q, args, err := t.insertSQL(sqliteDialect, id, fields)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *SQLiteRecordRepo) Delete(ctx context.Context, entityType models.EntityType, id string) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", entityType, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
