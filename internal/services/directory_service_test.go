package services

import (
	"context"
	"errors"
	"testing"

	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDirectory() (*DirectoryService, *memStore) {
	store := newMemStore()
	store.put(models.EntityStakeholder, "s1", models.Fields{
		"name": "Lev Echad", "budget": 250000.0, "collaboration_needs": "mentors",
		"contact": "+972", "email": "info@levechad.org", "contact_setting": models.ContactViaICAR,
	})
	store.put(models.EntityStakeholder, "s2", models.Fields{
		"name": "Open House", "email": "hi@open.org", "contact_setting": models.ContactOpen,
	})
	store.put(models.EntityProject, "p1", models.Fields{
		"title": "Mentoring", "organization_id": "s1", "status": "Active",
		"collaboration_needs": "mentors", "budget": 1000.0, "kpis": map[string]any{"participants": 80.0},
	})
	store.put(models.EntityProject, "p2", models.Fields{
		"title": "Closed pilot", "organization_id": "s1", "status": "Completed", "featured": true,
	})
	store.put(models.EntityProject, "p3", models.Fields{
		"title": "Showcase", "organization_id": "s2", "status": "open", "featured": true,
	})
	return NewDirectoryService(store, zap.NewNop()), store
}

func TestStakeholderFieldsFilteredByRole(t *testing.T) {
	svc, _ := newDirectory()
	ctx := context.Background()

	tests := []struct {
		role              string
		wantCollaboration bool
		wantBudget        bool
	}{
		{rbac.RolePublic, false, false},
		{rbac.RoleOrg, true, false},
		{rbac.RoleFunder, true, true},
		{rbac.RoleAdmin, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			st, err := svc.GetStakeholder(ctx, models.Actor{Role: tt.role}, "s1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCollaboration, st.CollaborationNeeds != nil)
			assert.Equal(t, tt.wantBudget, st.Budget != nil)
		})
	}
}

func TestContactDetailsRespectContactSetting(t *testing.T) {
	svc, _ := newDirectory()
	ctx := context.Background()

	st, err := svc.GetStakeholder(ctx, models.Actor{Role: rbac.RolePublic}, "s1")
	require.NoError(t, err)
	assert.Empty(t, st.Email)
	assert.Empty(t, st.Contact)

	st, err = svc.GetStakeholder(ctx, models.Actor{Role: rbac.RoleOrg, OrganizationID: "s1"}, "s1")
	require.NoError(t, err)
	assert.Equal(t, "info@levechad.org", st.Email, "owners see their own contact details")

	st, err = svc.GetStakeholder(ctx, models.Actor{Role: rbac.RolePublic}, "s2")
	require.NoError(t, err)
	assert.Equal(t, "hi@open.org", st.Email)
}

func TestProjectFieldsFilteredByRole(t *testing.T) {
	svc, _ := newDirectory()
	ctx := context.Background()

	p, err := svc.GetProject(ctx, models.Actor{Role: rbac.RoleOrg}, "p1")
	require.NoError(t, err)
	assert.NotNil(t, p.CollaborationNeeds)
	assert.Nil(t, p.Budget)
	assert.Nil(t, p.KPIs)

	p, err = svc.GetProject(ctx, models.Actor{Role: rbac.RoleFunder}, "p1")
	require.NoError(t, err)
	require.NotNil(t, p.Budget)
	assert.Equal(t, 1000.0, *p.Budget)
	assert.Equal(t, 80.0, p.KPIs["participants"])

	_, err = svc.GetProject(ctx, models.Actor{Role: rbac.RoleFunder}, "p404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOpportunities(t *testing.T) {
	svc, _ := newDirectory()

	list, err := svc.ListOpportunities(context.Background(), models.Actor{Role: rbac.RolePublic})
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
		assert.Nil(t, p.CollaborationNeeds, "public viewers never see collaboration needs")
	}
	assert.Equal(t, []string{"p1", "p3"}, ids)

	all, err := svc.ListProjects(context.Background(), models.Actor{Role: rbac.RolePublic})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteProject(t *testing.T) {
	svc, store := newDirectory()
	ctx := context.Background()

	err := svc.DeleteProject(ctx, models.Actor{ID: "u2", Role: rbac.RoleOrg, OrganizationID: "s2"}, "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteProject(ctx, models.Actor{ID: "u1", Role: rbac.RoleOrg, OrganizationID: "s1"}, "p1"))
	_, err = store.Get(ctx, models.EntityProject, "p1")
	assert.Error(t, err)

	require.NoError(t, svc.DeleteProject(ctx, models.Actor{ID: "a", Role: rbac.RoleAdmin}, "p3"))

	err = svc.DeleteProject(ctx, models.Actor{ID: "a", Role: rbac.RoleAdmin}, "p404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListStakeholdersReturnsAll(t *testing.T) {
	svc, _ := newDirectory()
	list, err := svc.ListStakeholders(context.Background(), models.Actor{Role: rbac.RoleFunder})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s1", list[0].ID)
	assert.NotNil(t, list[0].Budget)
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("owner creates for own organization", func(t *testing.T) {
		svc, store := newDirectory()
		p, err := svc.CreateProject(ctx, orgOwner, models.Fields{
			"title": "Night shelter", "organization_id": "s2", "featured": true, "budget": 500,
		})
		require.NoError(t, err)
		assert.Equal(t, "s1", p.OrganizationID)
		assert.Equal(t, "Lev Echad", p.OrganizationName)
		assert.Equal(t, models.DefaultProjectStatus, p.Status)
		assert.False(t, p.Featured)
		assert.Nil(t, p.Budget, "org viewers do not see budgets")

		stored, err := store.Get(ctx, models.EntityProject, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 500.0, stored["budget"])
		assert.NotContains(t, stored, "featured")
	})

	t.Run("admin names the organization", func(t *testing.T) {
		svc, _ := newDirectory()
		p, err := svc.CreateProject(ctx, admin, models.Fields{"title": "Showcase 2", "organization_id": "s2", "featured": true, "status": "Active"})
		require.NoError(t, err)
		assert.Equal(t, "s2", p.OrganizationID)
		assert.Equal(t, "Open House", p.OrganizationName)
		assert.Equal(t, "Active", p.Status)
		assert.True(t, p.Featured)
	})

	tests := []struct {
		name  string
		actor models.Actor
		in    models.Fields
		field string
		err   error
	}{
		{"public", models.Actor{Role: rbac.RolePublic}, models.Fields{"title": "x"}, "", ErrForbidden},
		{"org without organization", models.Actor{ID: "u9", Role: rbac.RoleOrg}, models.Fields{"title": "x"}, "organization_id", nil},
		{"admin without organization", admin, models.Fields{"title": "x"}, "organization_id", nil},
		{"missing title", orgOwner, models.Fields{"description": "x"}, "title", nil},
		{"unknown organization", admin, models.Fields{"title": "x", "organization_id": "s404"}, "organization_id", nil},
		{"malformed field", orgOwner, models.Fields{"title": "x", "lat": 123.0}, "lat", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newDirectory()
			before, _, _ := store.List(ctx, models.EntityProject)

			_, err := svc.CreateProject(ctx, tt.actor, tt.in)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var verr *schema.ValidationError
				require.True(t, errors.As(err, &verr), err)
				assert.Equal(t, tt.field, verr.Fields[0].Field)
			}

			after, _, _ := store.List(ctx, models.EntityProject)
			assert.Len(t, after, len(before))
		})
	}
}
