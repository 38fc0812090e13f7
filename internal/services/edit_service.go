package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/moderation"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/repositories"
	"github.com/icar-directory/backend/internal/schema"
	"go.uber.org/zap"
)

// Submission outcomes. Rejection is reported as an error, never as an outcome.
const (
	OutcomePublished = "published"
	OutcomeHeld      = "held"
)

// SubmitResult tells the caller whether the edit is live now or queued for review.
type SubmitResult struct {
	Outcome  string             `json:"outcome"`
	Entity   models.Fields      `json:"entity,omitempty"`
	Edit     *models.EditRecord `json:"edit,omitempty"`
	EditKind string             `json:"edit_kind,omitempty"`
	Note     string             `json:"note,omitempty"`

	// Degraded is set when the change was applied but its audit entry could
	// not be written.
	Degraded   bool  `json:"degraded,omitempty"`
	AuditError error `json:"-"`
}

// TrustStatus is the dashboard view of an actor's standing.
type TrustStatus struct {
	ActorID       string `json:"actor_id"`
	ApprovedEdits int    `json:"approved_edits"`
	Threshold     int    `json:"threshold"`
	Trusted       bool   `json:"trusted"`
}

// EditService coordinates edit submission and review across the record store,
// the ledger and the moderation policy.
type EditService struct {
	records    RecordStore
	ledger     Ledger
	rules      moderation.Rules
	classifier *moderation.Classifier
	trust      *moderation.TrustEvaluator
	policy     *moderation.Policy
	publisher  events.Publisher
	log        *zap.Logger
}

// NewEditService wires the moderation pipeline. cache may be nil.
func NewEditService(
	records RecordStore,
	ledger Ledger,
	rules moderation.Rules,
	cache moderation.TrustCache,
	publisher events.Publisher,
	log *zap.Logger,
) *EditService {
	trust := moderation.NewTrustEvaluator(ledger, cache, rules, log)
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &EditService{
		records:    records,
		ledger:     ledger,
		rules:      rules,
		classifier: moderation.NewClassifier(rules),
		trust:      trust,
		policy:     moderation.NewPolicy(trust),
		publisher:  publisher,
		log:        log,
	}
}

// SubmitEdit authorizes, validates and routes a proposed change. Admin edits
// apply immediately without a ledger entry; other edits are auto-approved
// when the actor is trusted and the edit is minor, and held otherwise.
func (s *EditService) SubmitEdit(ctx context.Context, actor models.Actor, entityType models.EntityType, entityID string, proposed models.Fields) (*SubmitResult, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermEditOwnEntity) {
		return nil, ErrForbidden
	}

	existing, err := s.records.Get(ctx, entityType, entityID)
	if err != nil {
		return nil, storeErr("load "+entityType.String(), err)
	}

	if !rbac.CanEditEntity(actor.Role, actor.OrganizationID, ownerOf(entityType, entityID, existing)) {
		return nil, ErrForbidden
	}

	changes, err := schema.Validate(entityType, proposed)
	if err != nil {
		return nil, err
	}

	if rbac.IsAdmin(actor.Role) {
		return s.publishAsAdmin(ctx, actor, entityType, entityID, changes, existing)
	}

	kind := s.classifier.Classify(entityType, changes, existing)
	auto, err := s.policy.ShouldAutoApprove(ctx, actor.ID, kind)
	if err != nil {
		return nil, storeErr("evaluate trust", err)
	}

	if !auto {
		return s.hold(ctx, actor, entityType, entityID, kind, changes, existing)
	}
	return s.autoApprove(ctx, actor, entityType, entityID, kind, changes, existing)
}

func (s *EditService) publishAsAdmin(ctx context.Context, actor models.Actor, entityType models.EntityType, entityID string, changes, existing models.Fields) (*SubmitResult, error) {
	if err := s.records.Apply(ctx, entityType, entityID, changes); err != nil {
		return nil, storeErr("apply "+entityType.String(), err)
	}

	s.log.Info("admin edit applied",
		zap.String("actor_id", actor.ID),
		zap.String("entity_type", entityType.String()),
		zap.String("entity_id", entityID),
		zap.Strings("fields", changes.Keys()),
	)
	s.publish(ctx, events.EventEditPublished, map[string]any{
		"entity_type": entityType,
		"entity_id":   entityID,
		"actor_id":    actor.ID,
	})

	return &SubmitResult{
		Outcome:  OutcomePublished,
		Entity:   merge(existing, changes),
		EditKind: s.classifier.Classify(entityType, changes, existing),
	}, nil
}

func (s *EditService) hold(ctx context.Context, actor models.Actor, entityType models.EntityType, entityID, kind string, changes, existing models.Fields) (*SubmitResult, error) {
	edit, err := s.ledger.Record(ctx, models.NewEdit{
		ActorID:       actor.ID,
		EntityType:    entityType,
		EntityID:      entityID,
		EditKind:      kind,
		ChangeSummary: changes,
		Status:        models.EditStatusPending,
	})
	if err != nil {
		return nil, storeErr("record pending edit", err)
	}

	s.log.Info("edit held for review",
		zap.String("edit_id", edit.ID.String()),
		zap.String("actor_id", actor.ID),
		zap.String("entity_type", entityType.String()),
		zap.String("entity_id", entityID),
		zap.String("edit_kind", kind),
	)
	s.publish(ctx, events.EventEditSubmitted, map[string]any{
		"edit_id":     edit.ID.String(),
		"entity_type": entityType,
		"entity_id":   entityID,
		"actor_id":    actor.ID,
		"edit_kind":   kind,
	})

	return &SubmitResult{
		Outcome:  OutcomeHeld,
		Edit:     edit,
		EditKind: kind,
		Note:     s.heldNote(entityType, kind, changes, existing),
	}, nil
}

func (s *EditService) autoApprove(ctx context.Context, actor models.Actor, entityType models.EntityType, entityID, kind string, changes, existing models.Fields) (*SubmitResult, error) {
	if err := s.records.Apply(ctx, entityType, entityID, changes); err != nil {
		return nil, storeErr("apply "+entityType.String(), err)
	}

	result := &SubmitResult{
		Outcome:  OutcomePublished,
		Entity:   merge(existing, changes),
		EditKind: kind,
	}

	edit, err := s.ledger.Record(ctx, models.NewEdit{
		ActorID:       actor.ID,
		EntityType:    entityType,
		EntityID:      entityID,
		EditKind:      kind,
		ChangeSummary: changes,
		Status:        models.EditStatusApproved,
	})
	if err != nil {
		// The change is already live; report it as published but flag the missing audit trail.
		s.log.Error("auto-approved edit applied without audit entry",
			zap.String("actor_id", actor.ID),
			zap.String("entity_type", entityType.String()),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		result.Degraded = true
		result.AuditError = storeErr("record approved edit", err)
	} else {
		result.Edit = edit
		s.trust.Invalidate(ctx, actor.ID)
		s.log.Info("edit auto-approved",
			zap.String("edit_id", edit.ID.String()),
			zap.String("actor_id", actor.ID),
			zap.String("entity_type", entityType.String()),
			zap.String("entity_id", entityID),
		)
	}

	s.publish(ctx, events.EventEditPublished, map[string]any{
		"entity_type": entityType,
		"entity_id":   entityID,
		"actor_id":    actor.ID,
		"degraded":    result.Degraded,
	})
	return result, nil
}

// ReviewEdit resolves a pending edit. Approval applies the stored change set
// before the ledger transition, so a failed apply leaves the edit pending.
// Approving an edit whose entity was deleted fails with ErrEntityGone.
func (s *EditService) ReviewEdit(ctx context.Context, reviewer models.Actor, editID uuid.UUID, decision string) (*models.EditRecord, error) {
	if !rbac.HasPermission(reviewer.Role, rbac.PermModerate) {
		return nil, ErrForbidden
	}
	if !models.IsValidReviewDecision(decision) {
		return nil, &schema.ValidationError{Fields: []schema.FieldError{{
			Field:   "decision",
			Message: fmt.Sprintf("must be %q or %q", models.EditStatusApproved, models.EditStatusRejected),
		}}}
	}

	edit, err := s.ledger.Get(ctx, editID)
	if err != nil {
		return nil, storeErr("load edit", err)
	}
	if !edit.IsPending() {
		return nil, ErrAlreadyResolved
	}

	if decision == models.EditStatusApproved {
		err := s.records.Apply(ctx, edit.EntityType, edit.EntityID, edit.ChangeSummary)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrEntityGone, edit.EntityType, edit.EntityID)
		}
		if err != nil {
			return nil, storeErr("apply reviewed edit", err)
		}
	}

	resolved, err := s.ledger.Resolve(ctx, edit.ID, decision, reviewer.ID)
	if err != nil {
		return nil, storeErr("resolve edit", err)
	}

	if decision == models.EditStatusApproved {
		s.trust.Invalidate(ctx, edit.ActorID)
	}

	s.log.Info("edit reviewed",
		zap.String("edit_id", edit.ID.String()),
		zap.String("reviewer_id", reviewer.ID),
		zap.String("decision", decision),
	)
	s.publish(ctx, events.EventEditReviewed, map[string]any{
		"edit_id":     edit.ID.String(),
		"entity_type": edit.EntityType,
		"entity_id":   edit.EntityID,
		"decision":    decision,
		"reviewer_id": reviewer.ID,
	})
	return resolved, nil
}

func (s *EditService) ListPendingEdits(ctx context.Context, entityType *models.EntityType) ([]models.EditRecord, error) {
	edits, err := s.ledger.ListPending(ctx, entityType)
	if err != nil {
		return nil, storeErr("list pending edits", err)
	}
	return edits, nil
}

func (s *EditService) GetEdit(ctx context.Context, id uuid.UUID) (*models.EditRecord, error) {
	edit, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load edit", err)
	}
	return edit, nil
}

// EditHistory lists the ledger entries for one entity, most recent first.
func (s *EditService) EditHistory(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.EditRecord, error) {
	edits, err := s.ledger.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, storeErr("list entity history", err)
	}
	return edits, nil
}

func (s *EditService) ActorHistory(ctx context.Context, actorID string, limit int) ([]models.EditRecord, error) {
	edits, err := s.ledger.ListByActor(ctx, actorID, limit)
	if err != nil {
		return nil, storeErr("list actor history", err)
	}
	return edits, nil
}

func (s *EditService) TrustStatus(ctx context.Context, actorID string) (*TrustStatus, error) {
	count, err := s.trust.ApprovedCount(ctx, actorID)
	if err != nil {
		return nil, storeErr("count approved edits", err)
	}
	return &TrustStatus{
		ActorID:       actorID,
		ApprovedEdits: count,
		Threshold:     s.trust.Threshold(),
		Trusted:       count >= s.trust.Threshold(),
	}, nil
}

func (s *EditService) heldNote(entityType models.EntityType, kind string, changes, existing models.Fields) string {
	if kind == models.EditKindMajor {
		var major []string
		for _, f := range moderation.ChangedFields(changes, existing) {
			if s.rules.IsMajorField(entityType, f) {
				major = append(major, f)
			}
		}
		return fmt.Sprintf("Changes to %s require admin review before publishing.", strings.Join(major, ", "))
	}
	return fmt.Sprintf("Your edit will be published once an admin approves it. Minor edits publish immediately after %d approved edits.", s.trust.Threshold())
}

func (s *EditService) publish(ctx context.Context, eventType string, payload map[string]any) {
	err := s.publisher.Publish(ctx, events.StreamModeration, events.Event{Type: eventType, Payload: payload})
	if err != nil {
		s.log.Warn("failed to publish moderation event", zap.String("type", eventType), zap.Error(err))
	}
}

// ownerOf returns the organization that owns an entity: a stakeholder owns
// itself, a project belongs to its organization_id.
func ownerOf(entityType models.EntityType, entityID string, fields models.Fields) string {
	switch entityType {
	case models.EntityStakeholder:
		return entityID
	case models.EntityProject:
		if org, ok := fields["organization_id"].(string); ok {
			return org
		}
	}
	return ""
}

func merge(existing, changes models.Fields) models.Fields {
	out := existing.Clone()
	for k, v := range changes {
		out[k] = v
	}
	return out
}
