package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/schema"
	"go.uber.org/zap"
)

// ClaimStatus tells whether an organization is operated by a verified claimant.
type ClaimStatus struct {
	OrganizationID string `json:"organization_id"`
	Claimed        bool   `json:"claimed"`
}

// ClaimService accepts organization claims and lets admins decide them.
type ClaimService struct {
	claims    ClaimStore
	records   RecordStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewClaimService(claims ClaimStore, records RecordStore, publisher events.Publisher, log *zap.Logger) *ClaimService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ClaimService{claims: claims, records: records, publisher: publisher, log: log}
}

// SubmitClaim files a pending claim for an existing organization. Anonymous
// claimants are allowed; a signed-in claimant is linked by user id.
func (s *ClaimService) SubmitClaim(ctx context.Context, claimant models.Actor, in models.NewClaim) (*models.OrganizationClaim, error) {
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	in.ClaimantName = strings.TrimSpace(in.ClaimantName)
	in.ClaimantEmail = strings.TrimSpace(in.ClaimantEmail)
	if err := validateClaim(in); err != nil {
		return nil, err
	}

	org, err := s.records.Get(ctx, models.EntityStakeholder, in.OrganizationID)
	if err != nil {
		return nil, storeErr("load organization", err)
	}
	claimed, err := s.claims.HasApproved(ctx, in.OrganizationID)
	if err != nil {
		return nil, storeErr("check claims", err)
	}
	if claimed {
		return nil, ErrAlreadyClaimed
	}

	in.OrganizationName, _ = org["name"].(string)
	in.ClaimantUserID = claimant.ID
	claim, err := s.claims.Create(ctx, in)
	if err != nil {
		return nil, storeErr("create claim", err)
	}

	s.log.Info("organization claim submitted",
		zap.String("claim_id", claim.ID.String()),
		zap.String("organization_id", claim.OrganizationID),
	)
	s.publish(ctx, events.EventClaimSubmitted, map[string]any{
		"claim_id":        claim.ID.String(),
		"organization_id": claim.OrganizationID,
	})
	return claim, nil
}

func validateClaim(in models.NewClaim) error {
	var errs []schema.FieldError
	if in.OrganizationID == "" {
		errs = append(errs, schema.FieldError{Field: "organization_id", Message: "is required"})
	}
	if in.ClaimantName == "" {
		errs = append(errs, schema.FieldError{Field: "claimant_name", Message: "is required"})
	}
	if local, domain, ok := strings.Cut(in.ClaimantEmail, "@"); !ok || local == "" || !strings.Contains(domain, ".") {
		errs = append(errs, schema.FieldError{Field: "claimant_email", Message: "must be an email address"})
	}
	if len(errs) > 0 {
		return &schema.ValidationError{Fields: errs}
	}
	return nil
}

// ListClaims returns claims newest first. An empty status lists every claim.
func (s *ClaimService) ListClaims(ctx context.Context, status string) ([]models.OrganizationClaim, error) {
	if status != "" && !models.IsValidClaimStatus(status) {
		return nil, &schema.ValidationError{Fields: []schema.FieldError{{Field: "status", Message: "unknown claim status"}}}
	}
	claims, err := s.claims.List(ctx, status)
	if err != nil {
		return nil, storeErr("list claims", err)
	}
	return claims, nil
}

func (s *ClaimService) GetClaim(ctx context.Context, id uuid.UUID) (*models.OrganizationClaim, error) {
	claim, err := s.claims.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load claim", err)
	}
	return claim, nil
}

// ReviewClaim approves or rejects a pending claim. Decided claims stay decided.
func (s *ClaimService) ReviewClaim(ctx context.Context, reviewer models.Actor, id uuid.UUID, decision string) (*models.OrganizationClaim, error) {
	if !rbac.HasPermission(reviewer.Role, rbac.PermModerate) {
		return nil, ErrForbidden
	}
	if !models.IsValidClaimDecision(decision) {
		return nil, &schema.ValidationError{Fields: []schema.FieldError{{
			Field:   "decision",
			Message: fmt.Sprintf("must be %q or %q", models.ClaimStatusApproved, models.ClaimStatusRejected),
		}}}
	}

	claim, err := s.claims.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load claim", err)
	}
	if !claim.IsPending() {
		return nil, ErrAlreadyResolved
	}

	resolved, err := s.claims.Resolve(ctx, id, decision, reviewer.ID)
	if err != nil {
		return nil, storeErr("resolve claim", err)
	}

	s.log.Info("organization claim reviewed",
		zap.String("claim_id", id.String()),
		zap.String("organization_id", resolved.OrganizationID),
		zap.String("reviewer_id", reviewer.ID),
		zap.String("decision", decision),
	)
	s.publish(ctx, events.EventClaimReviewed, map[string]any{
		"claim_id":        id.String(),
		"organization_id": resolved.OrganizationID,
		"decision":        decision,
		"reviewer_id":     reviewer.ID,
	})
	return resolved, nil
}

// ClaimStatus reports whether an organization has an approved claim.
func (s *ClaimService) ClaimStatus(ctx context.Context, organizationID string) (*ClaimStatus, error) {
	if _, err := s.records.Get(ctx, models.EntityStakeholder, organizationID); err != nil {
		return nil, storeErr("load organization", err)
	}
	claimed, err := s.claims.HasApproved(ctx, organizationID)
	if err != nil {
		return nil, storeErr("check claims", err)
	}
	return &ClaimStatus{OrganizationID: organizationID, Claimed: claimed}, nil
}

func (s *ClaimService) publish(ctx context.Context, eventType string, payload map[string]any) {
	err := s.publisher.Publish(ctx, events.StreamModeration, events.Event{Type: eventType, Payload: payload})
	if err != nil {
		s.log.Warn("failed to publish claim event", zap.String("type", eventType), zap.Error(err))
	}
}
