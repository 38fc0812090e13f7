package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const editColumns = `id, actor_id, entity_type, entity_id, submitted_at, edit_kind,
	change_summary, status, reviewer_id, reviewed_at`

// EditRepo is the PostgreSQL edit history ledger.
type EditRepo struct {
	pool PgxQuerier
	now  func() time.Time
}

func NewEditRepo(pool PgxQuerier) *EditRepo {
	return &EditRepo{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func scanEdit(row pgx.Row) (*models.EditRecord, error) {
	var e models.EditRecord
	var entityType string
	err := row.Scan(&e.ID, &e.ActorID, &entityType, &e.EntityID, &e.SubmittedAt, &e.EditKind,
		&e.ChangeSummary, &e.Status, &e.ReviewerID, &e.ReviewedAt)
	if err != nil {
		return nil, err
	}
	e.EntityType = models.EntityType(entityType)
	if e.ChangeSummary == nil {
		e.ChangeSummary = models.Fields{}
	}
	return &e, nil
}

func (r *EditRepo) Record(ctx context.Context, in models.NewEdit) (*models.EditRecord, error) {
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

	e, err := scanEdit(r.pool.QueryRow(ctx, `
		INSERT INTO edit_history (id, actor_id, entity_type, entity_id, submitted_at, edit_kind, change_summary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+editColumns,
		uuid.New(), in.ActorID, string(in.EntityType), in.EntityID, r.now(), in.EditKind, summary, in.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("record edit: %w", err)
	}
	return e, nil
}

func (r *EditRepo) Get(ctx context.Context, id uuid.UUID) (*models.EditRecord, error) {
	e, err := scanEdit(r.pool.QueryRow(ctx, `SELECT `+editColumns+` FROM edit_history WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get edit %s: %w", id, err)
	}
	return e, nil
}

func (r *EditRepo) ListPending(ctx context.Context, entityType *models.EntityType) ([]models.EditRecord, error) {
	query := `SELECT ` + editColumns + ` FROM edit_history WHERE status = $1`
	args := []any{models.EditStatusPending}
	if entityType != nil {
		query += ` AND entity_type = $2`
		args = append(args, string(*entityType))
	}
	query += ` ORDER BY submitted_at DESC, id DESC`
	return r.list(ctx, query, args...)
}

func (r *EditRepo) ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.EditRecord, error) {
	return r.list(ctx, `
		SELECT `+editColumns+` FROM edit_history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY submitted_at DESC, id DESC LIMIT $3
	`, string(entityType), entityID, clampLimit(limit))
}

func (r *EditRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]models.EditRecord, error) {
	return r.list(ctx, `
		SELECT `+editColumns+` FROM edit_history
		WHERE actor_id = $1
		ORDER BY submitted_at DESC, id DESC LIMIT $2
	`, actorID, clampLimit(limit))
}

func (r *EditRepo) list(ctx context.Context, query string, args ...any) ([]models.EditRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list edits: %w", err)
	}
	defer rows.Close()

	edits := []models.EditRecord{}
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		edits = append(edits, *e)
	}
	return edits, rows.Err()
}

// Resolve moves a pending edit to a terminal status. The conditional update
// makes replays on terminal records fail with ErrAlreadyResolved.
func (r *EditRepo) Resolve(ctx context.Context, id uuid.UUID, decision, reviewerID string) (*models.EditRecord, error) {
	if !models.IsValidReviewDecision(decision) {
		return nil, fmt.Errorf("%w: %q is not a review decision", ErrInvalidStatus, decision)
	}

	e, err := scanEdit(r.pool.QueryRow(ctx, `
		UPDATE edit_history SET status = $1, reviewer_id = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+editColumns,
		decision, reviewerID, r.now(), id, models.EditStatusPending,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyResolved
	}
	if err != nil {
		return nil, fmt.Errorf("resolve edit %s: %w", id, err)
	}
	return e, nil
}

func (r *EditRepo) CountApproved(ctx context.Context, actorID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM edit_history WHERE actor_id = $1 AND status = $2
	`, actorID, models.EditStatusApproved).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved edits: %w", err)
	}
	return count, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
