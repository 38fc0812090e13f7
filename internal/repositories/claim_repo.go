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

const claimColumns = `id, organization_id, organization_name, claimant_name, claimant_email,
	claimant_user_id, submitted_at, status, notes, reviewed_by, reviewed_at`

// ClaimRepo is the PostgreSQL store of organization claims.
type ClaimRepo struct {
	pool PgxQuerier
	now  func() time.Time
}

func NewClaimRepo(pool PgxQuerier) *ClaimRepo {
	return &ClaimRepo{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func scanClaim(row pgx.Row) (*models.OrganizationClaim, error) {
	var c models.OrganizationClaim
	err := row.Scan(&c.ID, &c.OrganizationID, &c.OrganizationName, &c.ClaimantName, &c.ClaimantEmail,
		&c.ClaimantUserID, &c.SubmittedAt, &c.Status, &c.Notes, &c.ReviewedBy, &c.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClaimRepo) Create(ctx context.Context, in models.NewClaim) (*models.OrganizationClaim, error) {
	c, err := scanClaim(r.pool.QueryRow(ctx, `
		INSERT INTO organization_claims (id, organization_id, organization_name, claimant_name, claimant_email,
			claimant_user_id, submitted_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+claimColumns,
		uuid.New(), in.OrganizationID, in.OrganizationName, in.ClaimantName, in.ClaimantEmail,
		nullable(in.ClaimantUserID), r.now(), models.ClaimStatusPending, nullable(in.Notes),
	))
	if err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return c, nil
}

func (r *ClaimRepo) Get(ctx context.Context, id uuid.UUID) (*models.OrganizationClaim, error) {
	c, err := scanClaim(r.pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM organization_claims WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get claim %s: %w", id, err)
	}
	return c, nil
}

// List returns claims newest first, optionally only those in status.
func (r *ClaimRepo) List(ctx context.Context, status string) ([]models.OrganizationClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM organization_claims`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims := []models.OrganizationClaim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// Resolve decides a pending claim. Replays on decided claims fail with ErrAlreadyResolved.
func (r *ClaimRepo) Resolve(ctx context.Context, id uuid.UUID, decision, reviewer string) (*models.OrganizationClaim, error) {
	if !models.IsValidClaimDecision(decision) {
		return nil, fmt.Errorf("%w: %q is not a claim decision", ErrInvalidStatus, decision)
	}

	c, err := scanClaim(r.pool.QueryRow(ctx, `
		UPDATE organization_claims SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+claimColumns,
		decision, reviewer, r.now(), id, models.ClaimStatusPending,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyResolved
	}
	if err != nil {
		return nil, fmt.Errorf("resolve claim %s: %w", id, err)
	}
	return c, nil
}

func (r *ClaimRepo) HasApproved(ctx context.Context, organizationID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM organization_claims WHERE organization_id = $1 AND status = $2)
	`, organizationID, models.ClaimStatusApproved).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved claim: %w", err)
	}
	return exists, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
