package models

// Actor is the authenticated identity behind an edit or review.
type Actor struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
}
