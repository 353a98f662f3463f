package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeinv/internal/domain"
)

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name        string
		itemName    string
		description string
		want        []string
	}{
		{
			name:     "name only",
			itemName: "Hammer",
			want:     []string{"hammer"},
		},
		{
			name:        "description tokens stripped and length filtered",
			itemName:    "Hammer",
			description: "Heavy-duty claw hammer, for nails!",
			want:        []string{"hammer", "heavyduty", "claw", "nails"},
		},
		{
			name:        "duplicates collapse",
			itemName:    "Rope",
			description: "rope rope rope",
			want:        []string{"rope"},
		},
		{
			name:        "short tokens dropped",
			itemName:    "Kit",
			description: "a box of odds and ends",
			want:        []string{"kit", "odds", "ends"},
		},
		{
			name: "empty input",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTags(tt.itemName, tt.description))
		})
	}
}

func TestCreateItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.CreateItem(ctx, ItemInput{Name: " "})
	assert.True(t, domain.IsValidation(err))

	_, err = env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: -1})
	assert.True(t, domain.IsValidation(err))

	regionID := int64(5)
	_, err = env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", RegionID: &regionID})
	assert.True(t, domain.IsValidation(err))

	missing := int64(999)
	_, err = env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", LocationID: &missing})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestCreateItemRegionMustBelongToLocation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)
	attic, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Attic"})
	require.NoError(t, err)

	atticRegions, err := env.locations.SetRegions(ctx, attic.ID, []*domain.Region{
		{Name: "Corner", X: 0, Y: 0, Width: 10, Height: 10},
	})
	require.NoError(t, err)

	_, err = env.inventory.CreateItem(ctx, ItemInput{
		Name:       "Hammer",
		Quantity:   1,
		LocationID: &garage.ID,
		RegionID:   &atticRegions[0].ID,
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestCreateItemIndexesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.inventory.CreateItem(ctx, ItemInput{
		Name:        "Hammer",
		Description: "Heavy-duty claw hammer, for nails!",
		Quantity:    1,
	})
	require.NoError(t, err)

	tags, err := env.inventory.ItemTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"claw", "hammer", "heavyduty", "nails"}, tags)
}

func TestUpdateItemRecomputesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Description: "claw hammer", Quantity: 1})
	require.NoError(t, err)

	_, err = env.inventory.UpdateItem(ctx, item.ID, ItemInput{Name: "Wrench", Description: "adjustable spanner", Quantity: 1})
	require.NoError(t, err)

	tags, err := env.inventory.ItemTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"adjustable", "spanner", "wrench"}, tags)
}

func TestUpdateItemMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.UpdateItem(ctx, 888, ItemInput{Name: "Ghost", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A missing item reports NotFound even when the input is also invalid.
	_, err = env.inventory.UpdateItem(ctx, 888, ItemInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteItemRemovesTagsAndImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	path, err := env.images.Save(ctx, "inventory", "hammer.jpg", strings.NewReader("img"))
	require.NoError(t, err)

	item, err := env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: 1, ImagePath: path})
	require.NoError(t, err)

	require.NoError(t, env.inventory.DeleteItem(ctx, item.ID))

	tags, err := env.inventory.ItemTags(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Contains(t, env.images.deleted, path)

	// Second delete observes NotFound.
	assert.ErrorIs(t, env.inventory.DeleteItem(ctx, item.ID), domain.ErrNotFound)
}

func TestConsumeOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.inventory.CreateItem(ctx, ItemInput{Name: "Battery", Quantity: 1})
	require.NoError(t, err)

	item, err = env.inventory.ConsumeOne(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)

	_, err = env.inventory.ConsumeOne(ctx, item.ID)
	assert.True(t, domain.IsValidation(err))
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: 1})
	require.NoError(t, err)

	results, err := env.inventory.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = env.inventory.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchExactNameRanksFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// An unrelated item whose description also contains the query.
	_, err := env.inventory.CreateItem(ctx, ItemInput{
		Name:        "Toolbox Deluxe",
		Description: "holds a hammer and more",
		Quantity:    1,
	})
	require.NoError(t, err)

	_, err = env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: 1})
	require.NoError(t, err)

	results, err := env.inventory.Search(ctx, "hammer")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Hammer", results[0].Name)
	assert.Equal(t, "Toolbox Deluxe", results[1].Name)
}

func TestSearchRankClasses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, in := range []ItemInput{
		{Name: "Nails", Description: "a box of drill bits", Quantity: 1}, // description only
		{Name: "Power drill", Quantity: 1},                               // contains
		{Name: "Drill bits", Quantity: 1},                                // prefix
		{Name: "Drill", Quantity: 1},                                     // exact
	} {
		_, err := env.inventory.CreateItem(ctx, in)
		require.NoError(t, err)
	}

	results, err := env.inventory.Search(ctx, "drill")
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "Drill", results[0].Name)
	assert.Equal(t, "Drill bits", results[1].Name)
	assert.Equal(t, "Power drill", results[2].Name)
	assert.Equal(t, "Nails", results[3].Name)
}

func TestSearchAlphabeticalTieBreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"drill press", "drill bits", "drill gun"} {
		_, err := env.inventory.CreateItem(ctx, ItemInput{Name: name, Quantity: 1})
		require.NoError(t, err)
	}

	results, err := env.inventory.Search(ctx, "drill")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "drill bits", results[0].Name)
	assert.Equal(t, "drill gun", results[1].Name)
	assert.Equal(t, "drill press", results[2].Name)
}

func TestSearchMatchesLocationAndRegionNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)
	regions, err := env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Toolbox", X: 0, Y: 0, Width: 10, Height: 10},
	})
	require.NoError(t, err)

	_, err = env.inventory.CreateItem(ctx, ItemInput{
		Name:       "Wrench",
		Quantity:   1,
		LocationID: &garage.ID,
		RegionID:   &regions[0].ID,
	})
	require.NoError(t, err)

	byLocation, err := env.inventory.Search(ctx, "garage")
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Wrench", byLocation[0].Name)

	byRegion, err := env.inventory.Search(ctx, "toolbox")
	require.NoError(t, err)
	require.Len(t, byRegion, 1)
	assert.Equal(t, "Wrench", byRegion[0].Name)
}

func TestHighlightItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)
	regions, err := env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Top", X: 10, Y: 20, Width: 50, Height: 30},
	})
	require.NoError(t, err)

	item, err := env.inventory.CreateItem(ctx, ItemInput{
		Name:       "Hammer",
		Quantity:   1,
		LocationID: &garage.ID,
		RegionID:   &regions[0].ID,
	})
	require.NoError(t, err)

	h, err := env.inventory.HighlightItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garage", h.Location.Name)
	assert.Equal(t, "Top", h.Region.Name)
	assert.Equal(t, 35.0, h.CenterX)
	assert.Equal(t, 35.0, h.CenterY)
}

func TestHighlightItemWithoutRegion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: 1})
	require.NoError(t, err)

	_, err = env.inventory.HighlightItem(ctx, item.ID)
	assert.True(t, domain.IsValidation(err))
}

func TestHighlightItemMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.HighlightItem(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
