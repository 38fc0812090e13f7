package models

import (
	"time"

	"github.com/google/uuid"
)

// Edit kinds
const (
	EditKindMinor = "minor"
	EditKindMajor = "major"
)

// Edit statuses
const (
	EditStatusPending  = "pending"
	EditStatusApproved = "approved"
	EditStatusRejected = "rejected"
)

// Valid edit status transitions: from -> []to.
// An edit may also be created directly as approved (auto-approval); it is terminal from the start.
var ValidEditTransitions = map[string][]string{
	EditStatusPending:  {EditStatusApproved, EditStatusRejected},
	EditStatusApproved: {},
	EditStatusRejected: {},
}

func IsValidEditTransition(from, to string) bool {
	allowed, ok := ValidEditTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalEditStatus reports whether no further transition is allowed from status.
func IsTerminalEditStatus(status string) bool {
	allowed, ok := ValidEditTransitions[status]
	return ok && len(allowed) == 0
}

// IsValidInitialEditStatus reports whether a ledger entry may be created with status.
func IsValidInitialEditStatus(status string) bool {
	return status == EditStatusPending || status == EditStatusApproved
}

// IsValidReviewDecision reports whether status is an allowed outcome of a manual review.
func IsValidReviewDecision(status string) bool {
	return IsValidEditTransition(EditStatusPending, status)
}

// EditRecord is one entry of the edit history ledger.
type EditRecord struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       string     `json:"actor_id"`
	EntityType    EntityType `json:"entity_type"`
	EntityID      string     `json:"entity_id"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	EditKind      string     `json:"edit_kind"`
	ChangeSummary Fields     `json:"change_summary"`
	Status        string     `json:"status"`
	ReviewerID    *string    `json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

func (e *EditRecord) IsPending() bool {
	return e.Status == EditStatusPending
}

// NewEdit carries what the ledger needs to create an EditRecord.
type NewEdit struct {
	ActorID       string
	EntityType    EntityType
	EntityID      string
	EditKind      string
	ChangeSummary Fields
	Status        string
}
