package moderation

import (
	"context"

	"github.com/icar-directory/backend/internal/models"
)

// Truster is the part of TrustEvaluator the policy depends on.
type Truster interface {
	IsTrusted(ctx context.Context, actorID string) (bool, error)
}

// Policy governs non-admin edits only; admins bypass it entirely.
type Policy struct {
	trust Truster
}

func NewPolicy(trust Truster) *Policy {
	return &Policy{trust: trust}
}

// ShouldAutoApprove is true iff the actor is trusted and the edit is minor.
func (p *Policy) ShouldAutoApprove(ctx context.Context, actorID, editKind string) (bool, error) {
	if editKind != models.EditKindMinor {
		return false, nil
	}
	return p.trust.IsTrusted(ctx, actorID)
}
