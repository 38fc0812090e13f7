package models

import "testing"

func TestIsValidEditTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{EditStatusPending, EditStatusApproved, true},
		{EditStatusPending, EditStatusRejected, true},

		// Terminal states never move again
		{EditStatusApproved, EditStatusRejected, false},
		{EditStatusApproved, EditStatusPending, false},
		{EditStatusApproved, EditStatusApproved, false},
		{EditStatusRejected, EditStatusApproved, false},
		{EditStatusRejected, EditStatusPending, false},

		{EditStatusPending, EditStatusPending, false},
		{"nonexistent", EditStatusApproved, false},
		{EditStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidEditTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidEditTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalEditStatuses(t *testing.T) {
	if IsTerminalEditStatus(EditStatusPending) {
		t.Error("pending must not be terminal")
	}
	for _, s := range []string{EditStatusApproved, EditStatusRejected} {
		if !IsTerminalEditStatus(s) {
			t.Errorf("%q should be terminal", s)
		}
	}
	if IsTerminalEditStatus("bogus") {
		t.Error("unknown status must not be reported terminal")
	}
}

func TestInitialStatusAndDecisions(t *testing.T) {
	if !IsValidInitialEditStatus(EditStatusPending) || !IsValidInitialEditStatus(EditStatusApproved) {
		t.Error("pending and approved are valid initial statuses")
	}
	if IsValidInitialEditStatus(EditStatusRejected) {
		t.Error("an edit cannot be created rejected")
	}
	if !IsValidReviewDecision(EditStatusApproved) || !IsValidReviewDecision(EditStatusRejected) {
		t.Error("approved and rejected are review decisions")
	}
	if IsValidReviewDecision(EditStatusPending) {
		t.Error("pending is not a review decision")
	}
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected EntityType
		wantErr  bool
	}{
		{"stakeholder", EntityStakeholder, false},
		{"stakeholders", EntityStakeholder, false},
		{"organizations", EntityStakeholder, false},
		{"Project", EntityProject, false},
		{"projects", EntityProject, false},
		{"resource", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEntityType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEntityType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseEntityType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProjectIsOpportunity(t *testing.T) {
	needs := "volunteer drivers"
	blank := "   "
	tests := []struct {
		name     string
		project  Project
		expected bool
	}{
		{"active with needs", Project{Status: "Active", CollaborationNeeds: &needs}, true},
		{"open featured", Project{Status: "Open", Featured: true}, true},
		{"active without needs", Project{Status: "Active"}, false},
		{"active blank needs", Project{Status: "Active", CollaborationNeeds: &blank}, false},
		{"planning with needs", Project{Status: "Planning", CollaborationNeeds: &needs}, false},
		{"closed featured", Project{Status: "Closed", Featured: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.project.IsOpportunity(); got != tt.expected {
				t.Errorf("IsOpportunity() = %v, want %v", got, tt.expected)
			}
		})
	}
}
