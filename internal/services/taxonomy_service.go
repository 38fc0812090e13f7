package services

import (
	"context"
	"strings"

	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/schema"
	"go.uber.org/zap"
)

// TaxonomyService serves the curated vocabularies, falling back to the
// built-in defaults for any that were never set.
type TaxonomyService struct {
	store TaxonomyStore
	log   *zap.Logger
}

func NewTaxonomyService(store TaxonomyStore, log *zap.Logger) *TaxonomyService {
	return &TaxonomyService{store: store, log: log}
}

func (s *TaxonomyService) Get(ctx context.Context, typ string) ([]string, error) {
	if _, err := models.ParseTaxonomyType(typ); err != nil {
		return nil, invalidTaxonomyType()
	}
	items, ok, err := s.store.Get(ctx, typ)
	if err != nil {
		return nil, storeErr("load taxonomy", err)
	}
	if !ok {
		return append([]string{}, models.DefaultTaxonomy[typ]...), nil
	}
	return items, nil
}

func (s *TaxonomyService) All(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(models.TaxonomyTypes))
	for _, typ := range models.TaxonomyTypes {
		items, err := s.Get(ctx, typ)
		if err != nil {
			return nil, err
		}
		out[typ] = items
	}
	return out, nil
}

// Set replaces one vocabulary. Items are trimmed; blanks and repeats are dropped.
func (s *TaxonomyService) Set(ctx context.Context, actor models.Actor, typ string, items []string) ([]string, error) {
	if !rbac.HasPermission(actor.Role, rbac.PermModerate) {
		return nil, ErrForbidden
	}
	if _, err := models.ParseTaxonomyType(typ); err != nil {
		return nil, invalidTaxonomyType()
	}

	seen := make(map[string]bool, len(items))
	clean := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		clean = append(clean, item)
	}

	if err := s.store.Set(ctx, typ, clean); err != nil {
		return nil, storeErr("save taxonomy", err)
	}
	s.log.Info("taxonomy updated", zap.String("type", typ), zap.Int("items", len(clean)), zap.String("actor_id", actor.ID))
	return clean, nil
}

func invalidTaxonomyType() error {
	return &schema.ValidationError{Fields: []schema.FieldError{{
		Field:   "type",
		Message: "must be one of " + strings.Join(models.TaxonomyTypes, ", "),
	}}}
}
