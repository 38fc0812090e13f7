package models

// Contact settings
const (
	ContactOpen    = "open"
	ContactViaICAR = "via_icar"
	ContactClosed  = "closed"
)

var AllContactSettings = []string{ContactOpen, ContactViaICAR, ContactClosed}

// Stakeholder is an organization in the directory.
type Stakeholder struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Focus               []string `json:"focus"`
	Location            string   `json:"location"`
	Lat                 float64  `json:"lat"`
	Lng                 float64  `json:"lng"`
	Status              string   `json:"status"`
	Description         string   `json:"description"`
	Contact             string   `json:"contact"`
	Email               string   `json:"email"`
	NationalImperatives []string `json:"national_imperatives"`
	ContactSetting      string   `json:"contact_setting"`

	// Role-specific fields
	Budget             *float64 `json:"budget,omitempty"`              // funder/admin only
	CollaborationNeeds *string  `json:"collaboration_needs,omitempty"` // org/funder/admin only
}
