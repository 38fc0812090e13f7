package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
)

// Fixed-width so lexical order matches chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteEditRepo is the SQLite edit history ledger.
type SQLiteEditRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteEditRepo(db *sql.DB) *SQLiteEditRepo {
	return &SQLiteEditRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteEdit(row rowScanner) (*models.EditRecord, error) {
	var (
		e                      models.EditRecord
		id, entityType         string
		submittedAt, summary   string
		reviewerID, reviewedAt sql.NullString
	)
	err := row.Scan(&id, &e.ActorID, &entityType, &e.EntityID, &submittedAt, &e.EditKind,
		&summary, &e.Status, &reviewerID, &reviewedAt)
	if err != nil {
		return nil, err
	}

	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse edit id: %w", err)
	}
	e.EntityType = models.EntityType(entityType)
	if e.SubmittedAt, err = time.Parse(sqliteTimeLayout, submittedAt); err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}
	e.ChangeSummary = models.Fields{}
	if summary != "" {
		if err := json.Unmarshal([]byte(summary), &e.ChangeSummary); err != nil {
			return nil, fmt.Errorf("decode change_summary: %w", err)
		}
	}
	if reviewerID.Valid {
		e.ReviewerID = &reviewerID.String
	}
	if reviewedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, reviewedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse reviewed_at: %w", err)
		}
		e.ReviewedAt = &t
	}
	return &e, nil
}

func (r *SQLiteEditRepo) Record(ctx context.Context, in models.NewEdit) (*models.EditRecord, error) {
	if !models.IsValidInitialEditStatus(in.Status) {
		return nil, fmt.Errorf("%w: cannot create edit as %q", ErrInvalidStatus, in.Status)
	}
	if in.ActorID == "" {
		return nil, ErrMissingActor
	}
	summary := in.ChangeSummary
	if summary == nil {
		summary = models.Fields{}
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode change_summary: %w", err)
	}

	id := uuid.New()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO edit_history (id, actor_id, entity_type, entity_id, submitted_at, edit_kind, change_summary, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id.String(), in.ActorID, string(in.EntityType), in.EntityID, r.now().Format(sqliteTimeLayout), in.EditKind, string(raw), in.Status)
	if err != nil {
		return nil, fmt.Errorf("record edit: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteEditRepo) Get(ctx context.Context, id uuid.UUID) (*models.EditRecord, error) {
	e, err := scanSQLiteEdit(r.db.QueryRowContext(ctx, `SELECT `+editColumns+` FROM edit_history WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get edit %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteEditRepo) ListPending(ctx context.Context, entityType *models.EntityType) ([]models.EditRecord, error) {
	query := `SELECT ` + editColumns + ` FROM edit_history WHERE status = ?`
	args := []any{models.EditStatusPending}
	if entityType != nil {
		query += ` AND entity_type = ?`
		args = append(args, string(*entityType))
	}
	query += ` ORDER BY submitted_at DESC, rowid DESC`
	return r.list(ctx, query, args...)
}

func (r *SQLiteEditRepo) ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.EditRecord, error) {
	return r.list(ctx, `
		SELECT `+editColumns+` FROM edit_history
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY submitted_at DESC, rowid DESC LIMIT ?
	`, string(entityType), entityID, clampLimit(limit))
}

func (r *SQLiteEditRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]models.EditRecord, error) {
	return r.list(ctx, `
		SELECT `+editColumns+` FROM edit_history
		WHERE actor_id = ?
		ORDER BY submitted_at DESC, rowid DESC LIMIT ?
	`, actorID, clampLimit(limit))
}

func (r *SQLiteEditRepo) list(ctx context.Context, query string, args ...any) ([]models.EditRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list edits: %w", err)
	}
	defer rows.Close()

	edits := []models.EditRecord{}
	for rows.Next() {
		e, err := scanSQLiteEdit(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, *e)
	}
	return edits, rows.Err()
}

func (r *SQLiteEditRepo) Resolve(ctx context.Context, id uuid.UUID, decision, reviewerID string) (*models.EditRecord, error) {
	if !models.IsValidReviewDecision(decision) {
		return nil, fmt.Errorf("%w: %q is not a review decision", ErrInvalidStatus, decision)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE edit_history SET status = ?, reviewer_id = ?, reviewed_at = ?
		WHERE id = ? AND status = ?
	`, decision, reviewerID, r.now().Format(sqliteTimeLayout), id.String(), models.EditStatusPending)
	if err != nil {
		return nil, fmt.Errorf("resolve edit %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve edit %s: %w", id, err)
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyResolved
	}
	return r.Get(ctx, id)
}

func (r *SQLiteEditRepo) CountApproved(ctx context.Context, actorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM edit_history WHERE actor_id = ? AND status = ?
	`, actorID, models.EditStatusApproved).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved edits: %w", err)
	}
	return count, nil
}
