package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/repositories"
)

// RecordStore is the directory record store the coordinator mutates.
type RecordStore interface {
	Get(ctx context.Context, entityType models.EntityType, id string) (models.Fields, error)
	Apply(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error
}

// DirectoryStore adds the create, read and delete operations the directory needs.
type DirectoryStore interface {
	RecordStore
	Create(ctx context.Context, entityType models.EntityType, id string, fields models.Fields) error
	List(ctx context.Context, entityType models.EntityType) ([]string, []models.Fields, error)
	Delete(ctx context.Context, entityType models.EntityType, id string) error
}

// Ledger is the append-mostly edit history.
type Ledger interface {
	Record(ctx context.Context, in models.NewEdit) (*models.EditRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.EditRecord, error)
	ListPending(ctx context.Context, entityType *models.EntityType) ([]models.EditRecord, error)
	Resolve(ctx context.Context, id uuid.UUID, decision, reviewerID string) (*models.EditRecord, error)
	CountApproved(ctx context.Context, actorID string) (int, error)
	ListByEntity(ctx context.Context, entityType models.EntityType, entityID string, limit int) ([]models.EditRecord, error)
	ListByActor(ctx context.Context, actorID string, limit int) ([]models.EditRecord, error)
}

// ClaimStore holds organization claims.
type ClaimStore interface {
	Create(ctx context.Context, in models.NewClaim) (*models.OrganizationClaim, error)
	Get(ctx context.Context, id uuid.UUID) (*models.OrganizationClaim, error)
	List(ctx context.Context, status string) ([]models.OrganizationClaim, error)
	Resolve(ctx context.Context, id uuid.UUID, decision, reviewer string) (*models.OrganizationClaim, error)
	HasApproved(ctx context.Context, organizationID string) (bool, error)
}

// TaxonomyStore holds the admin-curated vocabularies.
type TaxonomyStore interface {
	Get(ctx context.Context, typ string) ([]string, bool, error)
	Set(ctx context.Context, typ string, items []string) error
}

var (
	_ DirectoryStore = (*repositories.RecordRepo)(nil)
	_ DirectoryStore = (*repositories.SQLiteRecordRepo)(nil)
	_ Ledger         = (*repositories.EditRepo)(nil)
	_ Ledger         = (*repositories.SQLiteEditRepo)(nil)
	_ ClaimStore     = (*repositories.ClaimRepo)(nil)
	_ ClaimStore     = (*repositories.SQLiteClaimRepo)(nil)
	_ TaxonomyStore  = (*repositories.TaxonomyRepo)(nil)
	_ TaxonomyStore  = (*repositories.SQLiteTaxonomyRepo)(nil)
)
