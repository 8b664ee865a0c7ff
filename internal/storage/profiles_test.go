package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
)

func sampleProfile(id, groupID string, status model.MemberStatus) *model.Profile {
	return &model.Profile{
		ID:        id,
		Name:      "Ana",
		Email:     id + "@example.com",
		GroupID:   groupID,
		Status:    status,
		Role:      model.RoleMember,
		CreatedAt: time.Now(),
	}
}

func TestSaveAndGetProfile(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	profile := sampleProfile("p1", "group-1", model.MemberActive)
	require.NoError(t, store.SaveProfile(ctx, profile))

	got, err := store.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, profile.Email, got.Email)

	byEmail, err := store.GetProfileByEmail(ctx, profile.Email)
	require.NoError(t, err)
	assert.Equal(t, "p1", byEmail.ID)

	_, err = store.GetProfileByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetProfilesByGroup(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p1", "group-1", model.MemberActive)))
	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p2", "group-1", model.MemberPending)))
	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p3", "group-2", model.MemberActive)))

	members, err := store.GetProfilesByGroup(ctx, "group-1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// A groupless lookup yields nothing rather than every profile.
	none, err := store.GetProfilesByGroup(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApproveMember(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p1", "group-1", model.MemberPending)))
	require.NoError(t, store.ApproveMember(ctx, "p1"))

	got, err := store.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.MemberActive, got.Status)

	// Approving an already active member is a no-op miss.
	err = store.ApproveMember(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p1", "group-1", model.MemberActive)))
	require.NoError(t, store.RemoveMember(ctx, "p1"))

	got, err := store.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.GroupID)
}

func TestUpdateProfileGroup(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, sampleProfile("p1", "", model.MemberActive)))
	require.NoError(t, store.UpdateProfileGroup(ctx, "p1", "group-9"))

	got, err := store.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "group-9", got.GroupID)
}
