// Package moderation decides whether a proposed edit is published immediately
// or held for manual review.
package moderation

import (
	"github.com/icar-directory/backend/internal/models"
)

const DefaultTrustThreshold = 3

// Rules is the static moderation configuration. It is injected at construction
// so alternative policies can be substituted.
type Rules struct {
	// MajorFields lists, per entity type, the fields whose change makes an edit major.
	MajorFields map[models.EntityType][]string
	// TrustThreshold is the number of approved edits after which an actor is trusted.
	TrustThreshold int
}

func DefaultRules() Rules {
	return Rules{
		MajorFields: map[models.EntityType][]string{
			models.EntityStakeholder: {"name", "type", "status", "budget"},
			models.EntityProject:     {"title", "status", "budget", "organization_id"},
		},
		TrustThreshold: DefaultTrustThreshold,
	}
}

// IsMajorField reports whether field is in the major set of entityType.
func (r Rules) IsMajorField(entityType models.EntityType, field string) bool {
	for _, f := range r.MajorFields[entityType] {
		if f == field {
			return true
		}
	}
	return false
}

func (r Rules) threshold() int {
	if r.TrustThreshold <= 0 {
		return DefaultTrustThreshold
	}
	return r.TrustThreshold
}
