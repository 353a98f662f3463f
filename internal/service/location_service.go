package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/imagestore"
)

// locationRepository is the subset of store.LocationStore that
// LocationService requires.
type locationRepository interface {
	Create(ctx context.Context, name string, parentID *int64, description, locationType, imagePath string) (*domain.Location, error)
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	List(ctx context.Context) ([]*domain.Location, error)
	ListRoots(ctx context.Context) ([]*domain.Location, error)
	ListByParent(ctx context.Context, parentID int64) ([]*domain.Location, error)
	Count(ctx context.Context) (int, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	Update(ctx context.Context, id int64, name string, parentID *int64, description, locationType, imagePath string) error
	Delete(ctx context.Context, id int64) error
}

// regionRepository is the subset of store.RegionStore that LocationService
// requires.
type regionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Region, error)
	ListByLocation(ctx context.Context, locationID int64) ([]*domain.Region, error)
	ReplaceForLocation(ctx context.Context, locationID int64, regions []*domain.Region) ([]*domain.Region, error)
}

// itemCounter is the one story LocationService needs from the item side:
// whether any items still reference a location.
type itemCounter interface {
	CountByLocation(ctx context.Context, locationID int64) (int, error)
}

// LocationService owns the location tree and the region overlays drawn over
// each location's reference image.
type LocationService struct {
	locationStore locationRepository
	regionStore   regionRepository
	itemStore     itemCounter
	imgStore      imagestore.ImageStore
	logger        *slog.Logger
}

func NewLocationService(
	locationStore locationRepository,
	regionStore regionRepository,
	itemStore itemCounter,
	imgStore imagestore.ImageStore,
	logger *slog.Logger,
) *LocationService {
	return &LocationService{
		locationStore: locationStore,
		regionStore:   regionStore,
		itemStore:     itemStore,
		imgStore:      imgStore,
		logger:        logger,
	}
}

// LocationInput carries the writable fields of a location.
type LocationInput struct {
	Name         string
	ParentID     *int64
	Description  string
	LocationType string
	ImagePath    string
}

func (s *LocationService) CreateLocation(ctx context.Context, in LocationInput) (*domain.Location, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if in.ParentID != nil {
		parent, err := s.locationStore.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("parent location %d: %w", *in.ParentID, domain.ErrConstraintViolation)
		}
	}
	return s.locationStore.Create(ctx, strings.TrimSpace(in.Name), in.ParentID, in.Description, in.LocationType, in.ImagePath)
}

func (s *LocationService) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	return s.locationStore.GetByID(ctx, id)
}

// LocationFilter selects which slice of the tree ListLocations returns.
type LocationFilter struct {
	ParentID *int64
	RootOnly bool
}

func (s *LocationService) ListLocations(ctx context.Context, filter LocationFilter) ([]*domain.Location, error) {
	switch {
	case filter.ParentID != nil:
		return s.locationStore.ListByParent(ctx, *filter.ParentID)
	case filter.RootOnly:
		return s.locationStore.ListRoots(ctx)
	default:
		return s.locationStore.List(ctx)
	}
}

// UpdateLocation rewrites the location's fields. Re-parenting is refused when
// the new parent is the location itself or one of its descendants, so a cycle
// can never be written.
func (s *LocationService) UpdateLocation(ctx context.Context, id int64, in LocationInput) (*domain.Location, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}

	current, err := s.locationStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	if in.ParentID != nil {
		parent, err := s.locationStore.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("parent location %d: %w", *in.ParentID, domain.ErrConstraintViolation)
		}
		if err := s.checkNoCycle(ctx, id, *in.ParentID); err != nil {
			return nil, err
		}
	}

	imagePath := in.ImagePath
	if imagePath == "" {
		imagePath = current.ImagePath
	}

	if err := s.locationStore.Update(ctx, id, strings.TrimSpace(in.Name), in.ParentID, in.Description, in.LocationType, imagePath); err != nil {
		return nil, err
	}

	// A replaced reference image orphans the old file; clean it up after the
	// write commits, tolerating failure.
	if in.ImagePath != "" && current.ImagePath != "" && current.ImagePath != in.ImagePath {
		if err := s.imgStore.Delete(ctx, current.ImagePath); err != nil {
			s.logger.Error("failed to delete replaced location image", "path", current.ImagePath, "error", err)
		}
	}

	return s.locationStore.GetByID(ctx, id)
}

// checkNoCycle walks up from newParentID and fails if it reaches id.
func (s *LocationService) checkNoCycle(ctx context.Context, id, newParentID int64) error {
	if newParentID == id {
		return domain.ErrCycleDetected
	}
	bound, err := s.walkBound(ctx)
	if err != nil {
		return err
	}
	currentID := newParentID
	for steps := 0; steps < bound; steps++ {
		loc, err := s.locationStore.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		if loc == nil || loc.ParentID == nil {
			return nil
		}
		if *loc.ParentID == id {
			return domain.ErrCycleDetected
		}
		currentID = *loc.ParentID
	}
	return domain.ErrCycleDetected
}

// DeleteLocation refuses to delete a location that still has child locations
// or referencing items. Owned regions are removed atomically with the row,
// and the reference image is removed best-effort after.
func (s *LocationService) DeleteLocation(ctx context.Context, id int64) error {
	loc, err := s.locationStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.ErrNotFound
	}

	children, err := s.locationStore.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("location %d still has %d child locations: %w", id, children, domain.ErrConstraintViolation)
	}

	items, err := s.itemStore.CountByLocation(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return fmt.Errorf("location %d still has %d items: %w", id, items, domain.ErrConstraintViolation)
	}

	if err := s.locationStore.Delete(ctx, id); err != nil {
		return err
	}

	if loc.ImagePath != "" {
		if err := s.imgStore.Delete(ctx, loc.ImagePath); err != nil {
			s.logger.Error("failed to delete location image", "path", loc.ImagePath, "error", err)
		}
	}

	return nil
}

// Breadcrumbs returns the location's ancestor chain, root-first. A missing
// starting id is an error; a dangling mid-chain parent ends the walk with the
// partial chain collected so far. The walk is bounded by the total number of
// locations plus one, so a cyclic parent graph terminates with
// ErrCycleDetected instead of looping.
func (s *LocationService) Breadcrumbs(ctx context.Context, id int64) ([]domain.Breadcrumb, error) {
	loc, err := s.locationStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	bound, err := s.walkBound(ctx)
	if err != nil {
		return nil, err
	}

	crumbs := []domain.Breadcrumb{{ID: loc.ID, Name: loc.Name}}
	parentID := loc.ParentID
	for steps := 1; parentID != nil; steps++ {
		if steps >= bound {
			return nil, domain.ErrCycleDetected
		}
		parent, err := s.locationStore.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// Dangling reference: render what we have rather than failing.
			s.logger.Warn("breadcrumb walk hit dangling parent", "location_id", id, "missing_parent_id", *parentID)
			break
		}
		crumbs = append([]domain.Breadcrumb{{ID: parent.ID, Name: parent.Name}}, crumbs...)
		parentID = parent.ParentID
	}

	return crumbs, nil
}

// Children returns the direct children of parentID, one level only.
func (s *LocationService) Children(ctx context.Context, parentID int64) ([]*domain.Location, error) {
	return s.locationStore.ListByParent(ctx, parentID)
}

// Subtree returns every descendant of id in breadth-first order, not
// including id itself. The expansion is bounded the same way as Breadcrumbs.
func (s *LocationService) Subtree(ctx context.Context, id int64) ([]*domain.Location, error) {
	loc, err := s.locationStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	bound, err := s.walkBound(ctx)
	if err != nil {
		return nil, err
	}

	var descendants []*domain.Location
	queue := []int64{id}
	seen := map[int64]bool{id: true}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		children, err := s.locationStore.ListByParent(ctx, currentID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if seen[child.ID] {
				return nil, domain.ErrCycleDetected
			}
			seen[child.ID] = true
			if len(descendants) >= bound {
				return nil, domain.ErrCycleDetected
			}
			descendants = append(descendants, child)
			queue = append(queue, child.ID)
		}
	}

	return descendants, nil
}

func (s *LocationService) walkBound(ctx context.Context) (int, error) {
	n, err := s.locationStore.Count(ctx)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// SetRegions replaces the location's whole region set, in the given order.
// Every region must validate or the batch is rejected untouched.
func (s *LocationService) SetRegions(ctx context.Context, locationID int64, regions []*domain.Region) ([]*domain.Region, error) {
	loc, err := s.locationStore.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}

	for i, reg := range regions {
		if strings.TrimSpace(reg.Name) == "" {
			return nil, domain.Invalid("regions", fmt.Sprintf("region %d: name must not be empty", i))
		}
		if reg.Width <= 0 {
			return nil, domain.Invalid("regions", fmt.Sprintf("region %q: width must be positive", reg.Name))
		}
		if reg.Height <= 0 {
			return nil, domain.Invalid("regions", fmt.Sprintf("region %q: height must be positive", reg.Name))
		}
	}

	return s.regionStore.ReplaceForLocation(ctx, locationID, regions)
}

func (s *LocationService) ListRegions(ctx context.Context, locationID int64) ([]*domain.Region, error) {
	loc, err := s.locationStore.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return s.regionStore.ListByLocation(ctx, locationID)
}

func (s *LocationService) GetRegion(ctx context.Context, id int64) (*domain.Region, error) {
	return s.regionStore.GetByID(ctx, id)
}

// FindRegionAt returns the first region, in stored order, whose rectangle
// contains the point, or nil when none does. Insertion order is the tie-break
// for overlapping regions.
func (s *LocationService) FindRegionAt(ctx context.Context, locationID int64, x, y int) (*domain.Region, error) {
	regions, err := s.ListRegions(ctx, locationID)
	if err != nil {
		return nil, err
	}
	for _, reg := range regions {
		if reg.Contains(x, y) {
			return reg, nil
		}
	}
	return nil, nil
}
