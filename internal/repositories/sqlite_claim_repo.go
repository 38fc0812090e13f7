package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
)

// SQLiteClaimRepo is the SQLite store of organization claims.
type SQLiteClaimRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteClaimRepo(db *sql.DB) *SQLiteClaimRepo {
	return &SQLiteClaimRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func scanSQLiteClaim(row rowScanner) (*models.OrganizationClaim, error) {
	var (
		c                         models.OrganizationClaim
		id, submittedAt           string
		userID, notes, reviewedBy sql.NullString
		reviewedAt                sql.NullString
	)
	err := row.Scan(&id, &c.OrganizationID, &c.OrganizationName, &c.ClaimantName, &c.ClaimantEmail,
		&userID, &submittedAt, &c.Status, &notes, &reviewedBy, &reviewedAt)
	if err != nil {
		return nil, err
	}

	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse claim id: %w", err)
	}
	if c.SubmittedAt, err = time.Parse(sqliteTimeLayout, submittedAt); err != nil {
		return nil, fmt.Errorf("parse submitted_at: %w", err)
	}
	if userID.Valid {
		c.ClaimantUserID = &userID.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	if reviewedBy.Valid {
		c.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, reviewedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse reviewed_at: %w", err)
		}
		c.ReviewedAt = &t
	}
	return &c, nil
}

func (r *SQLiteClaimRepo) Create(ctx context.Context, in models.NewClaim) (*models.OrganizationClaim, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organization_claims (id, organization_id, organization_name, claimant_name, claimant_email,
			claimant_user_id, submitted_at, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id.String(), in.OrganizationID, in.OrganizationName, in.ClaimantName, in.ClaimantEmail,
		nullable(in.ClaimantUserID), r.now().Format(sqliteTimeLayout), models.ClaimStatusPending, nullable(in.Notes))
	if err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteClaimRepo) Get(ctx context.Context, id uuid.UUID) (*models.OrganizationClaim, error) {
	c, err := scanSQLiteClaim(r.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM organization_claims WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get claim %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteClaimRepo) List(ctx context.Context, status string) ([]models.OrganizationClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM organization_claims`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims := []models.OrganizationClaim{}
	for rows.Next() {
		c, err := scanSQLiteClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func (r *SQLiteClaimRepo) Resolve(ctx context.Context, id uuid.UUID, decision, reviewer string) (*models.OrganizationClaim, error) {
	if !models.IsValidClaimDecision(decision) {
		return nil, fmt.Errorf("%w: %q is not a claim decision", ErrInvalidStatus, decision)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE organization_claims SET status = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND status = ?
	`, decision, reviewer, r.now().Format(sqliteTimeLayout), id.String(), models.ClaimStatusPending)
	if err != nil {
		return nil, fmt.Errorf("resolve claim %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve claim %s: %w", id, err)
	}
	if n == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyResolved
	}
	return r.Get(ctx, id)
}

func (r *SQLiteClaimRepo) HasApproved(ctx context.Context, organizationID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM organization_claims WHERE organization_id = ? AND status = ?)
	`, organizationID, models.ClaimStatusApproved).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved claim: %w", err)
	}
	return exists, nil
}
