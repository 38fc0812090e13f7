package models

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityStakeholder EntityType = "stakeholder"
	EntityProject     EntityType = "project"
)

var AllEntityTypes = []EntityType{EntityStakeholder, EntityProject}

func (t EntityType) Valid() bool {
	for _, et := range AllEntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType accepts singular and plural forms ("projects" -> project).
func ParseEntityType(s string) (EntityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	if s == "organization" {
		s = string(EntityStakeholder)
	}
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// Fields is a field name -> value change set or record snapshot.
type Fields map[string]any

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns field names in no particular order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}
