package dto

import "github.com/icar-directory/backend/internal/schema"

type ErrorResponse struct {
	Error     string              `json:"error"`
	RequestID string              `json:"request_id,omitempty"`
	Fields    []schema.FieldError `json:"fields,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// PublishedResponse is returned when an edit is live immediately.
type PublishedResponse struct {
	Status   string `json:"status"`
	Entity   any    `json:"entity"`
	EditID   string `json:"edit_id,omitempty"`
	EditKind string `json:"edit_kind,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// HeldResponse is returned with 202 when an edit awaits review.
type HeldResponse struct {
	Status   string `json:"status"`
	EditID   string `json:"edit_id"`
	EditKind string `json:"edit_kind"`
	Note     string `json:"note"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Redis  bool   `json:"redis"`
}

type TaxonomyResponse struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}
