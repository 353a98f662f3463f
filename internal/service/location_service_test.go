package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeinv/internal/db"
	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/store"
)

// stubImageStore is a minimal in-memory imagestore.ImageStore for tests.
type stubImageStore struct {
	saved   map[string]string
	deleted []string
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{saved: make(map[string]string)}
}

func (s *stubImageStore) Save(_ context.Context, category, originalName string, r io.Reader) (string, error) {
	data, _ := io.ReadAll(r)
	key := category + "/" + originalName
	s.saved[key] = string(data)
	return key, nil
}

func (s *stubImageStore) Get(_ context.Context, storedPath string) (io.ReadCloser, string, error) {
	data, ok := s.saved[storedPath]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), "image/jpeg", nil
}

func (s *stubImageStore) Delete(_ context.Context, storedPath string) error {
	delete(s.saved, storedPath)
	s.deleted = append(s.deleted, storedPath)
	return nil
}

// testEnv wires both services over one fresh database.
type testEnv struct {
	db            *sql.DB
	locations     *LocationService
	inventory     *InventoryService
	locationStore *store.LocationStore
	regionStore   *store.RegionStore
	itemStore     *store.ItemStore
	tagStore      *store.TagStore
	images        *stubImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	env := &testEnv{
		db:            d,
		locationStore: store.NewLocationStore(d),
		regionStore:   store.NewRegionStore(d),
		itemStore:     store.NewItemStore(d),
		tagStore:      store.NewTagStore(d),
		images:        newStubImageStore(),
	}
	env.locations = NewLocationService(env.locationStore, env.regionStore, env.itemStore, env.images, slog.Default())
	env.inventory = NewInventoryService(env.itemStore, env.tagStore, env.locationStore, env.regionStore, env.images, slog.Default())
	return env
}

func TestCreateLocationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.locations.CreateLocation(ctx, LocationInput{Name: "  "})
	assert.True(t, domain.IsValidation(err))
}

func TestCreateLocationMissingParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing := int64(999)
	_, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Shelf", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestBreadcrumbsRootOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)

	crumbs, err := env.locations.Breadcrumbs(ctx, garage.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Breadcrumb{{ID: garage.ID, Name: "Garage"}}, crumbs)
}

func TestBreadcrumbsChainRootFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "House"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Shelf", ParentID: &b.ID})
	require.NoError(t, err)

	crumbs, err := env.locations.Breadcrumbs(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Breadcrumb{
		{ID: a.ID, Name: "House"},
		{ID: b.ID, Name: "Garage"},
		{ID: c.ID, Name: "Shelf"},
	}, crumbs)
}

func TestBreadcrumbsMissingStart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.locations.Breadcrumbs(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBreadcrumbsDanglingParentReturnsPartialChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "House"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage", ParentID: &a.ID})
	require.NoError(t, err)

	// Point the chain at a parent that no longer resolves. Both the service
	// guards and foreign-key enforcement forbid this, so write it on a
	// dedicated connection with enforcement off.
	conn, err := env.db.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "UPDATE locations SET parent_id = 4040 WHERE id = ?", a.ID)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	crumbs, err := env.locations.Breadcrumbs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Breadcrumb{
		{ID: a.ID, Name: "House"},
		{ID: b.ID, Name: "Garage"},
	}, crumbs)
}

func TestBreadcrumbsCycleDetected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "A"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)

	// Force A.parent = B directly in the store to fabricate a cycle.
	require.NoError(t, env.locationStore.Update(ctx, a.ID, "A", &b.ID, "", "", ""))

	_, err = env.locations.Breadcrumbs(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestUpdateLocationRejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "A"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := env.locations.CreateLocation(ctx, LocationInput{Name: "C", ParentID: &b.ID})
	require.NoError(t, err)

	// Self-parent.
	_, err = env.locations.UpdateLocation(ctx, a.ID, LocationInput{Name: "A", ParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	// Re-parenting under a descendant.
	_, err = env.locations.UpdateLocation(ctx, a.ID, LocationInput{Name: "A", ParentID: &c.ID})
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	// A legal re-parent still works.
	moved, err := env.locations.UpdateLocation(ctx, c.ID, LocationInput{Name: "C", ParentID: &a.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)
}

func TestChildrenOneLevelOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "A"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	_, err = env.locations.CreateLocation(ctx, LocationInput{Name: "D", ParentID: &b.ID})
	require.NoError(t, err)

	children, err := env.locations.Children(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "B", children[0].Name)
}

func TestSubtreeBreadthFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.locations.CreateLocation(ctx, LocationInput{Name: "A"})
	require.NoError(t, err)
	b, err := env.locations.CreateLocation(ctx, LocationInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	_, err = env.locations.CreateLocation(ctx, LocationInput{Name: "C", ParentID: &a.ID})
	require.NoError(t, err)
	_, err = env.locations.CreateLocation(ctx, LocationInput{Name: "D", ParentID: &b.ID})
	require.NoError(t, err)

	subtree, err := env.locations.Subtree(ctx, a.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(subtree))
	for _, loc := range subtree {
		names = append(names, loc.Name)
	}
	assert.Equal(t, []string{"B", "C", "D"}, names)
}

func TestSubtreeMissingStart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.locations.Subtree(context.Background(), 777)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteLocationRejectsWhenChildrenRemain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)
	_, err = env.locations.CreateLocation(ctx, LocationInput{Name: "Shelf A", ParentID: &garage.ID})
	require.NoError(t, err)

	err = env.locations.DeleteLocation(ctx, garage.ID)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	// The location survives the rejected delete.
	still, err := env.locations.GetLocation(ctx, garage.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestDeleteLocationRejectsWhenItemsRemain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)
	_, err = env.inventory.CreateItem(ctx, ItemInput{Name: "Hammer", Quantity: 1, LocationID: &garage.ID})
	require.NoError(t, err)

	err = env.locations.DeleteLocation(ctx, garage.ID)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestDeleteLocationCleansUpImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	path, err := env.images.Save(ctx, "locations", "garage.jpg", strings.NewReader("img"))
	require.NoError(t, err)

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage", ImagePath: path})
	require.NoError(t, err)

	require.NoError(t, env.locations.DeleteLocation(ctx, garage.ID))
	assert.Contains(t, env.images.deleted, path)
}

func TestDeleteLocationMissing(t *testing.T) {
	env := newTestEnv(t)

	err := env.locations.DeleteLocation(context.Background(), 55)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetRegionsValidatesWholeBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)

	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Top", X: 0, Y: 0, Width: 50, Height: 50},
	})
	require.NoError(t, err)

	// One bad entry rejects the whole batch; the old set stays.
	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Left", X: 0, Y: 0, Width: 30, Height: 30},
		{Name: "", X: 10, Y: 10, Width: 5, Height: 5},
	})
	assert.True(t, domain.IsValidation(err))

	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Flat", X: 0, Y: 0, Width: 10, Height: 0},
	})
	assert.True(t, domain.IsValidation(err))

	regions, err := env.locations.ListRegions(ctx, garage.ID)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Top", regions[0].Name)
}

func TestSetRegionsEmptyClears(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)

	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "Top", X: 0, Y: 0, Width: 50, Height: 50},
	})
	require.NoError(t, err)

	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{})
	require.NoError(t, err)

	regions, err := env.locations.ListRegions(ctx, garage.ID)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestSetRegionsMissingLocation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.locations.SetRegions(context.Background(), 321, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindRegionAtInsertionOrderWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	garage, err := env.locations.CreateLocation(ctx, LocationInput{Name: "Garage"})
	require.NoError(t, err)

	// Two overlapping rectangles; the first inserted wins the overlap.
	_, err = env.locations.SetRegions(ctx, garage.ID, []*domain.Region{
		{Name: "First", X: 0, Y: 0, Width: 100, Height: 100},
		{Name: "Second", X: 50, Y: 50, Width: 100, Height: 100},
	})
	require.NoError(t, err)

	hit, err := env.locations.FindRegionAt(ctx, garage.ID, 75, 75)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "First", hit.Name)

	// Only the second rectangle covers this point.
	hit, err = env.locations.FindRegionAt(ctx, garage.ID, 120, 120)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Second", hit.Name)

	// No region covers this point.
	hit, err = env.locations.FindRegionAt(ctx, garage.ID, 500, 500)
	require.NoError(t, err)
	assert.Nil(t, hit)
}
