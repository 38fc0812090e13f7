// Package schema validates proposed field sets before they reach moderation.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/icar-directory/backend/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://icar.schemas.local/"

// compiled holds one JSON Schema per entity type describing its editable fields.
var compiled = mustCompile(map[models.EntityType]string{
	models.EntityStakeholder: "stakeholder.schema.json",
	models.EntityProject:     "project.schema.json",
})

func mustCompile(files map[models.EntityType]string) map[models.EntityType]*jsonschema.Schema {
	out := make(map[models.EntityType]*jsonschema.Schema, len(files))
	for entityType, name := range files {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := schemaBaseURL + name
		if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("schema %s load failed: %v", name, err))
		}
		s, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("schema %s compile failed: %v", name, err))
		}
		out[entityType] = s
	}
	return out
}

// Fields lists, sorted, the editable fields of an entity type.
func Fields(entityType models.EntityType) []string {
	s, ok := compiled[entityType]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a proposed change set is malformed.
type ValidationError struct {
	EntityType models.EntityType `json:"entity_type"`
	Fields     []FieldError      `json:"fields"`
}

func (e *ValidationError) Error() string {
	subject := "request"
	if e.EntityType != "" {
		subject = string(e.EntityType) + " changes"
	}
	if len(e.Fields) == 0 {
		return "invalid " + subject
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("invalid %s: %s", subject, strings.Join(parts, "; "))
}

// Invalid builds a single-field ValidationError.
func Invalid(entityType models.EntityType, field, message string) *ValidationError {
	return &ValidationError{EntityType: entityType, Fields: []FieldError{{Field: field, Message: message}}}
}

// Validate checks proposed against the entity type's schema and returns a
// normalized copy: numbers as float64, string lists as []string, objects as map[string]any.
// An empty change set is valid; no-op submissions are not short-circuited here.
func Validate(entityType models.EntityType, proposed models.Fields) (models.Fields, error) {
	s, ok := compiled[entityType]
	if !ok {
		return nil, Invalid(entityType, "entity_type", "unknown entity type")
	}

	doc, errs := canonical(proposed)
	for name := range doc {
		if _, known := s.Properties[name]; !known {
			errs = append(errs, FieldError{Field: name, Message: "unknown field"})
		}
	}

	if err := s.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validate %s: %w", entityType, err)
		}
		errs = append(errs, fieldErrors(verr)...)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{EntityType: entityType, Fields: dedupe(errs)}
	}

	out := make(models.Fields, len(doc))
	for name, v := range doc {
		out[name] = normalize(v)
	}
	return out, nil
}

// canonical round-trips every value through JSON so the validator sees only
// JSON types. Values that cannot be encoded are reported and left out.
func canonical(proposed models.Fields) (map[string]any, []FieldError) {
	doc := make(map[string]any, len(proposed))
	var errs []FieldError
	for name, v := range proposed {
		raw, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: "not a JSON value"})
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			errs = append(errs, FieldError{Field: name, Message: "not a JSON value"})
			continue
		}
		doc[name] = decoded
	}
	return doc, errs
}

// fieldErrors flattens the validator's cause tree into one entry per leaf,
// keyed by the top-level property the leaf points into. Root-level
// additionalProperties failures are already reported per field.
func fieldErrors(verr *jsonschema.ValidationError) []FieldError {
	if len(verr.Causes) > 0 {
		var out []FieldError
		for _, cause := range verr.Causes {
			out = append(out, fieldErrors(cause)...)
		}
		return out
	}

	field := topLevelField(verr.InstanceLocation)
	if field == "" {
		if strings.HasSuffix(verr.KeywordLocation, "/additionalProperties") {
			return nil
		}
		return []FieldError{{Field: "body", Message: verr.Message}}
	}
	return []FieldError{{Field: field, Message: verr.Message}}
}

func topLevelField(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}
	first, _, _ := strings.Cut(pointer, "/")
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(first)
}

// dedupe keeps the first message per field, sorted by field name.
func dedupe(errs []FieldError) []FieldError {
	seen := make(map[string]bool, len(errs))
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		if seen[e.Field] {
			continue
		}
		seen[e.Field] = true
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		f, _ := val.Float64()
		return f
	case []any:
		list := make([]string, 0, len(val))
		for _, item := range val {
			s, _ := item.(string)
			list = append(list, s)
		}
		return list
	case map[string]any:
		obj := make(map[string]any, len(val))
		for k, item := range val {
			obj[k] = normalizeNested(item)
		}
		return obj
	}
	return v
}

// normalizeNested converts numbers inside free-form objects without
// touching their lists.
func normalizeNested(v any) any {
	switch val := v.(type) {
	case json.Number:
		f, _ := val.Float64()
		return f
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeNested(item)
		}
		return out
	case map[string]any:
		obj := make(map[string]any, len(val))
		for k, item := range val {
			obj[k] = normalizeNested(item)
		}
		return obj
	}
	return v
}
