package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/icar-directory/backend/internal/events"
	"github.com/icar-directory/backend/internal/models"
	"github.com/icar-directory/backend/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClaims() (*ClaimService, *memClaims, *recordingPublisher) {
	store := newMemStore()
	store.put(models.EntityStakeholder, "s1", models.Fields{"name": "Lev Echad"})
	claims := &memClaims{}
	pub := &recordingPublisher{}
	return NewClaimService(claims, store, pub, zap.NewNop()), claims, pub
}

var danaClaim = models.NewClaim{OrganizationID: "s1", ClaimantName: "Dana", ClaimantEmail: "dana@levechad.org", Notes: "director"}

func TestSubmitClaimUsesDirectoryName(t *testing.T) {
	svc, _, pub := newClaims()
	in := danaClaim
	in.OrganizationName = "Someone Else"

	claim, err := svc.SubmitClaim(context.Background(), orgOwner, in)
	require.NoError(t, err)
	assert.Equal(t, "Lev Echad", claim.OrganizationName)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	require.NotNil(t, claim.ClaimantUserID)
	assert.Equal(t, orgOwner.ID, *claim.ClaimantUserID)
	assert.Equal(t, []string{events.EventClaimSubmitted}, pub.types())
}

func TestSubmitClaimAnonymous(t *testing.T) {
	svc, _, _ := newClaims()
	claim, err := svc.SubmitClaim(context.Background(), models.Actor{}, danaClaim)
	require.NoError(t, err)
	assert.Nil(t, claim.ClaimantUserID)
}

func TestSubmitClaimRejects(t *testing.T) {
	tests := []struct {
		name   string
		in     models.NewClaim
		fields []string
		err    error
	}{
		{"missing everything", models.NewClaim{}, []string{"organization_id", "claimant_name", "claimant_email"}, nil},
		{"bad email", models.NewClaim{OrganizationID: "s1", ClaimantName: "Dana", ClaimantEmail: "dana@localhost"}, []string{"claimant_email"}, nil},
		{"blank name", models.NewClaim{OrganizationID: "s1", ClaimantName: "  ", ClaimantEmail: "d@x.org"}, []string{"claimant_name"}, nil},
		{"unknown organization", models.NewClaim{OrganizationID: "s404", ClaimantName: "Dana", ClaimantEmail: "d@x.org"}, nil, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, claims, _ := newClaims()
			_, err := svc.SubmitClaim(context.Background(), models.Actor{}, tt.in)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var verr *schema.ValidationError
				require.True(t, errors.As(err, &verr))
				var got []string
				for _, f := range verr.Fields {
					got = append(got, f.Field)
				}
				assert.Equal(t, tt.fields, got)
			}
			assert.Empty(t, claims.claims)
		})
	}
}

func TestReviewClaim(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newClaims()
	claim, err := svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	require.NoError(t, err)

	_, err = svc.ReviewClaim(ctx, orgOwner, claim.ID, models.ClaimStatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ReviewClaim(ctx, admin, claim.ID, models.ClaimStatusPending)
	var verr *schema.ValidationError
	assert.True(t, errors.As(err, &verr))

	resolved, err := svc.ReviewClaim(ctx, admin, claim.ID, models.ClaimStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	assert.Equal(t, admin.ID, *resolved.ReviewedBy)

	_, err = svc.ReviewClaim(ctx, admin, claim.ID, models.ClaimStatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	_, err = svc.ReviewClaim(ctx, admin, uuid.New(), models.ClaimStatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.EventClaimSubmitted, events.EventClaimReviewed}, pub.types())
}

func TestApprovedClaimBlocksNewClaims(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newClaims()

	st, err := svc.ClaimStatus(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Claimed)

	first, err := svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	require.NoError(t, err)
	// A second pending claim is allowed until one is approved.
	_, err = svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	require.NoError(t, err)

	_, err = svc.ReviewClaim(ctx, admin, first.ID, models.ClaimStatusApproved)
	require.NoError(t, err)

	st, err = svc.ClaimStatus(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, st.Claimed)

	_, err = svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	_, err = svc.ClaimStatus(ctx, "s404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClaimsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newClaims()
	a, err := svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	require.NoError(t, err)
	_, err = svc.SubmitClaim(ctx, models.Actor{}, danaClaim)
	require.NoError(t, err)
	_, err = svc.ReviewClaim(ctx, admin, a.ID, models.ClaimStatusRejected)
	require.NoError(t, err)

	all, err := svc.ListClaims(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListClaims(ctx, models.ClaimStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.ListClaims(ctx, "open")
	var verr *schema.ValidationError
	assert.True(t, errors.As(err, &verr))
}
