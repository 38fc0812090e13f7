package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/icar-directory/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// RecordRepo is the PostgreSQL record store for stakeholders and projects.
type RecordRepo struct {
	pool PgxQuerier
}

func NewRecordRepo(pool PgxQuerier) *RecordRepo {
	return &RecordRepo{pool: pool}
}

func (r *RecordRepo) Get(ctx context.Context, entityType models.EntityType, id string) (models.Fields, error) {
	t, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	targets := t.scanTargets()
	err = r.pool.QueryRow(ctx, t.selectSQL(postgresDialect, "id = $1"), id).Scan(targets...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", entityType, id, err)
	}
	_, fields, err := t.decode(targets)
	return fields, err
}

func (r *RecordRepo) List(ctx context.Context, entityType models.EntityType) ([]string, []models.Fields, error) {
	t, err := tableFor(entityType)
	if err != nil {
		return nil, nil, err
	}
	rows, err := r.pool.Query(ctx, t.selectSQL(postgresDialect, ""))
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

// Apply writes only the supplied fields. An empty change set still checks existence.
func (r *RecordRepo) Apply(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", t.name), id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("apply %s %s: %w", entityType, id, err)
		}
		if !exists {
			return ErrNotFound
		}
		return nil
	}

	q, args, err := t.updateSQL(postgresDialect, id, fields)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("apply %s %s: %w", entityType, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecordRepo) Create(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	q, args, err := t.insertSQL(postgresDialect, id, fields)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, q, args...)
	return err
}

func (r *RecordRepo) Delete(ctx context.Context, entityType models.EntityType, id string) error {
	t, err := tableFor(entityType)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", entityType, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
