package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/repositories"
	"github.com/icar-directory/backend/internal/schema"
	"go.uber.org/zap"
)

// DirectoryService serves role-filtered reads of stakeholders and projects.
type DirectoryService struct {
	store DirectoryStore
	log   *zap.Logger
}

func NewDirectoryService(store DirectoryStore, log *zap.Logger) *DirectoryService {
	return &DirectoryService{store: store, log: log}
}

func (s *DirectoryService) ListStakeholders(ctx context.Context, viewer models.Actor) ([]models.Stakeholder, error) {
	ids, rows, err := s.store.List(ctx, models.EntityStakeholder)
	if err != nil {
		return nil, storeErr("list stakeholders", err)
	}
	out := make([]models.Stakeholder, 0, len(ids))
	for i, id := range ids {
		st, err := repositories.StakeholderFromFields(id, rows[i])
		if err != nil {
			return nil, storeErr("decode stakeholder", err)
		}
		filterStakeholder(st, viewer)
		out = append(out, *st)
	}
	return out, nil
}

func (s *DirectoryService) GetStakeholder(ctx context.Context, viewer models.Actor, id string) (*models.Stakeholder, error) {
	fields, err := s.store.Get(ctx, models.EntityStakeholder, id)
	if err != nil {
		return nil, storeErr("load stakeholder", err)
	}
	st, err := repositories.StakeholderFromFields(id, fields)
	if err != nil {
		return nil, storeErr("decode stakeholder", err)
	}
	filterStakeholder(st, viewer)
	return st, nil
}

func (s *DirectoryService) ListProjects(ctx context.Context, viewer models.Actor) ([]models.Project, error) {
	return s.listProjects(ctx, viewer, false)
}

// ListOpportunities returns the open or active projects that are featured or
// carry collaboration needs.
func (s *DirectoryService) ListOpportunities(ctx context.Context, viewer models.Actor) ([]models.Project, error) {
	return s.listProjects(ctx, viewer, true)
}

func (s *DirectoryService) listProjects(ctx context.Context, viewer models.Actor, opportunitiesOnly bool) ([]models.Project, error) {
	ids, rows, err := s.store.List(ctx, models.EntityProject)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	out := make([]models.Project, 0, len(ids))
	for i, id := range ids {
		p, err := repositories.ProjectFromFields(id, rows[i])
		if err != nil {
			return nil, storeErr("decode project", err)
		}
		// Opportunity status depends on collaboration needs, so decide before filtering.
		if opportunitiesOnly && !p.IsOpportunity() {
			continue
		}
		filterProject(p, viewer.Role)
		out = append(out, *p)
	}
	return out, nil
}

func (s *DirectoryService) GetProject(ctx context.Context, viewer models.Actor, id string) (*models.Project, error) {
	fields, err := s.store.Get(ctx, models.EntityProject, id)
	if err != nil {
		return nil, storeErr("load project", err)
	}
	p, err := repositories.ProjectFromFields(id, fields)
	if err != nil {
		return nil, storeErr("decode project", err)
	}
	filterProject(p, viewer.Role)
	return p, nil
}

// CreateProject adds a project owned by the actor's organization. Admins name
// the owning organization in organization_id. The organization name is copied
// from the directory record, and featuring stays an admin decision.
func (s *DirectoryService) CreateProject(ctx context.Context, actor models.Actor, proposed models.Fields) (*models.Project, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermCreateProject) {
		return nil, ErrForbidden
	}

	fields, err := schema.Validate(models.EntityProject, proposed)
	if err != nil {
		return nil, err
	}

	orgID := actor.OrganizationID
	if rbac.IsAdmin(actor.Role) {
		if v, _ := fields["organization_id"].(string); v != "" {
			orgID = v
		}
	} else {
		delete(fields, "featured")
	}
	if orgID == "" {
		return nil, schema.Invalid(models.EntityProject, "organization_id", "is required")
	}
	if title, _ := fields["title"].(string); strings.TrimSpace(title) == "" {
		return nil, schema.Invalid(models.EntityProject, "title", "is required")
	}

	org, err := s.store.Get(ctx, models.EntityStakeholder, orgID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, schema.Invalid(models.EntityProject, "organization_id", "unknown organization")
	}
	if err != nil {
		return nil, storeErr("load organization", err)
	}

	fields["organization_id"] = orgID
	fields["organization_name"], _ = org["name"].(string)
	if status, _ := fields["status"].(string); status == "" {
		fields["status"] = models.DefaultProjectStatus
	}

	id := uuid.NewString()
	if err := s.store.Create(ctx, models.EntityProject, id, fields); err != nil {
		return nil, storeErr("create project", err)
	}
	s.log.Info("project created",
		zap.String("project_id", id),
		zap.String("organization_id", orgID),
		zap.String("actor_id", actor.ID),
	)
	return s.GetProject(ctx, actor, id)
}

// DeleteProject removes a project. Only admins and the owning organization may delete.
func (s *DirectoryService) DeleteProject(ctx context.Context, actor models.Actor, id string) error {
	fields, err := s.store.Get(ctx, models.EntityProject, id)
	if err != nil {
		return storeErr("load project", err)
	}
	owner, _ := fields["organization_id"].(string)
	if !rbac.CanDeleteProject(actor.Role, actor.OrganizationID, owner) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, models.EntityProject, id); err != nil {
		return storeErr("delete project", err)
	}
	s.log.Info("project deleted", zap.String("project_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func filterStakeholder(st *models.Stakeholder, viewer models.Actor) {
	if !rbac.HasPermission(viewer.Role, rbac.PermViewCollaboration) {
		st.CollaborationNeeds = nil
	}
	if !rbac.HasPermission(viewer.Role, rbac.PermViewBudget) {
		st.Budget = nil
	}
	// Direct contact details are shown only when the organization opts in.
	owner := viewer.OrganizationID != "" && viewer.OrganizationID == st.ID
	if st.ContactSetting != models.ContactOpen && !owner && !rbac.IsAdmin(viewer.Role) {
		st.Contact = ""
		st.Email = ""
	}
}

func filterProject(p *models.Project, role string) {
	if !rbac.HasPermission(role, rbac.PermViewCollaboration) {
		p.CollaborationNeeds = nil
	}
	if !rbac.HasPermission(role, rbac.PermViewBudget) {
		p.Budget = nil
		p.KPIs = nil
	}
}
