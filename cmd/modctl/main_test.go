package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/icar-directory/backend/internal/app"
	"github.com/icar-directory/backend/internal/auth"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/moderation"
	"github.com/icar-directory/backend/internal/rbac"
	"github.com/icar-directory/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func useSQLite(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icar.db")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("REDIS_ENABLED", "false")
	jsonOutput = false
	return &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: path}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	jsonOutput = false
	return out.String(), err
}

// seedHeldEdit stores one stakeholder and one pending edit against it.
func seedHeldEdit(t *testing.T, cfg *config.Config) string {
	t.Helper()
	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Records.Create(ctx, models.EntityStakeholder, "s1", models.Fields{"name": "Lev Echad", "description": "old"}))

	svc := services.NewEditService(store.Records, store.Ledger, moderation.DefaultRules(), nil, nil, zap.NewNop())
	res, err := svc.SubmitEdit(ctx, models.Actor{ID: "u1", Role: rbac.RoleOrg, OrganizationID: "s1"},
		models.EntityStakeholder, "s1", models.Fields{"description": "new"})
	require.NoError(t, err)
	require.Equal(t, services.OutcomeHeld, res.Outcome)
	return res.Edit.ID.String()
}

func TestPendingListAndApprove(t *testing.T) {
	cfg := useSQLite(t)
	editID := seedHeldEdit(t, cfg)

	out, err := run(t, "pending", "list", "--json")
	require.NoError(t, err)
	var pending []models.EditRecord
	require.NoError(t, json.Unmarshal([]byte(out), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, editID, pending[0].ID.String())

	out, err = run(t, "pending", "list", "--entity-type", "stakeholder")
	require.NoError(t, err)
	assert.Contains(t, out, editID)

	out, err = run(t, "edits", "approve", editID, "--reviewer", "admin-1")
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	_, err = run(t, "edits", "reject", editID, "--reviewer", "admin-1")
	assert.ErrorIs(t, err, services.ErrAlreadyResolved)

	out, err = run(t, "trust", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "1/3 approved")

	out, err = run(t, "history", "stakeholders", "s1", "--json")
	require.NoError(t, err)
	var history []models.EditRecord
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 1)
	assert.Equal(t, models.EditStatusApproved, history[0].Status)
}

func TestApproveInvalidatesSharedTrustCache(t *testing.T) {
	cfg := useSQLite(t)
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")

	editID := seedHeldEdit(t, cfg)
	require.NoError(t, mr.Set("trust:approved:u1", "0"))

	_, err := run(t, "edits", "approve", editID, "--reviewer", "admin-1")
	require.NoError(t, err)
	assert.False(t, mr.Exists("trust:approved:u1"), "approval must drop the cached approved count")
}

func TestReviewRequiresReviewer(t *testing.T) {
	useSQLite(t)
	_, err := run(t, "edits", "approve", "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	useSQLite(t)
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")
}

func TestTokenCommand(t *testing.T) {
	useSQLite(t)
	out, err := run(t, "token", "--user", "u1", "--role", "funder", "--org", "s2")
	require.NoError(t, err)

	claims, err := auth.ParseJWT("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, rbac.RoleFunder, claims.Role)
	assert.Equal(t, "s2", claims.OrganizationID)

	_, err = run(t, "token", "--user", "u1", "--role", "superuser")
	assert.Error(t, err)
}

func TestClaimsListAndReview(t *testing.T) {
	cfg := useSQLite(t)
	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Records.Create(ctx, models.EntityStakeholder, "s1", models.Fields{"name": "Lev Echad"}))
	claim, err := services.NewClaimService(store.Claims, store.Records, nil, zap.NewNop()).SubmitClaim(ctx, models.Actor{},
		models.NewClaim{OrganizationID: "s1", ClaimantName: "Dana", ClaimantEmail: "dana@levechad.org"})
	require.NoError(t, err)
	store.Close()

	out, err := run(t, "claims", "list")
	require.NoError(t, err)
	assert.Contains(t, out, claim.ID.String())
	assert.Contains(t, out, "Lev Echad")

	out, err = run(t, "claims", "approve", claim.ID.String(), "--reviewer", "admin-1")
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	_, err = run(t, "claims", "reject", claim.ID.String(), "--reviewer", "admin-1")
	assert.ErrorIs(t, err, services.ErrAlreadyResolved)

	out, err = run(t, "claims", "list", "--json")
	require.NoError(t, err)
	var pending []models.OrganizationClaim
	require.NoError(t, json.Unmarshal([]byte(out), &pending))
	assert.Empty(t, pending)
}

func TestTaxonomySetAndShow(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "taxonomy", "show", models.TaxonomyProjectStatuses)
	require.NoError(t, err)
	assert.Contains(t, out, "Planning")

	out, err = run(t, "taxonomy", "set", models.TaxonomyProjectStatuses, "Planning", "Active", " Active ", "Paused")
	require.NoError(t, err)
	assert.Contains(t, out, "3 items")

	out, err = run(t, "taxonomy", "show", "--json")
	require.NoError(t, err)
	var all map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Equal(t, []string{"Planning", "Active", "Paused"}, all[models.TaxonomyProjectStatuses])
	assert.Equal(t, models.DefaultTaxonomy[models.TaxonomyFileCategories], all[models.TaxonomyFileCategories])

	_, err = run(t, "taxonomy", "set", "regions", "North")
	assert.Error(t, err)
}
