package models

import "fmt"

// Taxonomy lists the admin-curated vocabularies of the directory.
const (
	TaxonomyFocusAreas        = "focus_areas"
	TaxonomyOrganizationTypes = "organization_types"
	TaxonomyProjectStatuses   = "project_statuses"
	TaxonomyFileCategories    = "file_categories"
)

// TaxonomyTypes is the fixed, ordered set of vocabularies.
var TaxonomyTypes = []string{
	TaxonomyFocusAreas,
	TaxonomyOrganizationTypes,
	TaxonomyProjectStatuses,
	TaxonomyFileCategories,
}

// DefaultTaxonomy is served for any vocabulary that has never been set.
var DefaultTaxonomy = map[string][]string{
	TaxonomyFocusAreas: {
		"Mental Health", "Emergency Response", "Family Support", "Trauma Recovery", "Community Resilience",
		"Youth Programs", "Elderly Care", "Disability Support", "Education", "Research",
	},
	TaxonomyOrganizationTypes: {"NGO", "Government", "Private Sector", "Academic", "Community Group", "Funder", "Startup"},
	TaxonomyProjectStatuses:   {"Planning", "Active", "Completed", "On Hold"},
	TaxonomyFileCategories:    {"report", "impact_data", "case_study", "other"},
}

// DefaultProjectStatus is the status a new project starts in.
const DefaultProjectStatus = "Planning"

func ParseTaxonomyType(s string) (string, error) {
	if _, ok := DefaultTaxonomy[s]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown taxonomy type %q", s)
}
