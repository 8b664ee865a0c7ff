package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultCategories(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	seeded, err := store.SeedDefaultCategories(ctx, "group-1")
	require.NoError(t, err)
	require.Len(t, seeded, 8)

	names := make(map[string]bool)
	for _, cat := range seeded {
		names[cat.Name] = true
		assert.Equal(t, "group-1", cat.GroupID)
		assert.NotEmpty(t, cat.Icon)
	}
	assert.True(t, names["Comida"])
	assert.True(t, names["Casa"])
	assert.True(t, names["Otros"])

	// Seeding again must not duplicate.
	again, err := store.SeedDefaultCategories(ctx, "group-1")
	require.NoError(t, err)
	assert.Len(t, again, 8)

	cats, err := store.GetCategories(ctx, "group-1")
	require.NoError(t, err)
	assert.Len(t, cats, 8)
}

func TestCategoryCRUD(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	seeded, err := store.SeedDefaultCategories(ctx, "group-1")
	require.NoError(t, err)
	cat := seeded[0]

	cat.Name = "Mercado"
	cat.Icon = "🛒"
	require.NoError(t, store.UpdateCategory(ctx, &cat))

	cats, err := store.GetCategories(ctx, "group-1")
	require.NoError(t, err)
	var found bool
	for _, c := range cats {
		if c.ID == cat.ID {
			found = true
			assert.Equal(t, "Mercado", c.Name)
		}
	}
	assert.True(t, found)

	require.NoError(t, store.DeleteCategory(ctx, cat.ID))
	cats, err = store.GetCategories(ctx, "group-1")
	require.NoError(t, err)
	assert.Len(t, cats, 7)
}
