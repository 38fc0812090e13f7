package dto

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type HistoryQuery struct {
	Limit int
}

// ParseHistoryQuery reads ?limit=, leaving zero for the store default.
func ParseHistoryQuery(c *fiber.Ctx) HistoryQuery {
	q := HistoryQuery{}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	return q
}

// ClaimRequest is the body of POST /claims.
type ClaimRequest struct {
	OrganizationID string `json:"organization_id"`
	ClaimantName   string `json:"claimant_name"`
	ClaimantEmail  string `json:"claimant_email"`
	Notes          string `json:"notes"`
}

// TaxonomyRequest is the body of PUT /moderation/taxonomy.
type TaxonomyRequest struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}
