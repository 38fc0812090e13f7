package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim statuses
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// Valid claim status transitions: from -> []to.
var ValidClaimTransitions = map[string][]string{
	ClaimStatusPending:  {ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusApproved: {},
	ClaimStatusRejected: {},
}

func IsValidClaimTransition(from, to string) bool {
	for _, s := range ValidClaimTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidClaimStatus(status string) bool {
	_, ok := ValidClaimTransitions[status]
	return ok
}

// IsValidClaimDecision reports whether status is an allowed outcome of a claim review.
func IsValidClaimDecision(status string) bool {
	return IsValidClaimTransition(ClaimStatusPending, status)
}

// OrganizationClaim is a request by a person to be recognized as the
// operator of a directory organization.
type OrganizationClaim struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   string     `json:"organization_id"`
	OrganizationName string     `json:"organization_name"`
	ClaimantName     string     `json:"claimant_name"`
	ClaimantEmail    string     `json:"claimant_email"`
	ClaimantUserID   *string    `json:"claimant_user_id,omitempty"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes,omitempty"`
	ReviewedBy       *string    `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
}

func (c *OrganizationClaim) IsPending() bool {
	return c.Status == ClaimStatusPending
}

// NewClaim carries what the claim store needs to create an OrganizationClaim.
type NewClaim struct {
	OrganizationID   string
	OrganizationName string
	ClaimantName     string
	ClaimantEmail    string
	ClaimantUserID   string
	Notes            string
}
