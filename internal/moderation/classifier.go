package moderation

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/icar-directory/backend/internal/models"
)

type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns major if any changed field is in the entity type's major set,
// minor otherwise. An empty change set is minor.
func (c *Classifier) Classify(entityType models.EntityType, proposed, existing models.Fields) string {
	for _, field := range ChangedFields(proposed, existing) {
		if c.rules.IsMajorField(entityType, field) {
			return models.EditKindMajor
		}
	}
	return models.EditKindMinor
}

// ChangedFields returns, sorted, the proposed fields that are absent from existing
// or whose value differs from it.
func ChangedFields(proposed, existing models.Fields) []string {
	var changed []string
	for field, value := range proposed {
		current, ok := existing[field]
		if !ok || !valuesEqual(value, current) {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)
	return changed
}

// valuesEqual compares by canonical JSON so 5 == 5.0 and []any{"a"} == []string{"a"}.
func valuesEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
