package models

import "strings"

// Project statuses treated as open for the opportunities view.
var openProjectStatuses = []string{"open", "active"}

type Project struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	OrganizationID   string   `json:"organization_id"`
	OrganizationName string   `json:"organization_name"`
	Description      string   `json:"description"`
	Status           string   `json:"status"`
	FocusAreas       []string `json:"focus_areas"`
	Location         string   `json:"location"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Featured         bool     `json:"featured"`
	ExpiryDate       *string  `json:"expiry_date,omitempty"`

	// Role-specific fields
	CollaborationNeeds *string        `json:"collaboration_needs,omitempty"` // org/funder/admin only
	Budget             *float64       `json:"budget,omitempty"`              // funder/admin only
	KPIs               map[string]any `json:"kpis,omitempty"`                // funder/admin only
}

// IsOpportunity reports whether the project is open/active and either has
// collaboration needs or is featured.
func (p *Project) IsOpportunity() bool {
	open := false
	for _, s := range openProjectStatuses {
		if strings.EqualFold(p.Status, s) {
			open = true
			break
		}
	}
	if !open {
		return false
	}
	if p.Featured {
		return true
	}
	return p.CollaborationNeeds != nil && strings.TrimSpace(*p.CollaborationNeeds) != ""
}
