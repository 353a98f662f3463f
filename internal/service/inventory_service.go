package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/imagestore"
)

// itemRepository is the subset of store.ItemStore that InventoryService
// requires.
type itemRepository interface {
	Create(ctx context.Context, name, description string, quantity int, imagePath string, locationID, regionID *int64) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, locationID, regionID *int64) ([]*domain.Item, error)
	SearchCandidates(ctx context.Context, query string) ([]*domain.Item, error)
	Update(ctx context.Context, id int64, name, description string, quantity int, imagePath string, locationID, regionID *int64) error
	DecrementQuantity(ctx context.Context, id int64) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
}

// tagRepository is the subset of store.TagStore that InventoryService
// requires.
type tagRepository interface {
	Replace(ctx context.Context, itemID int64, tags []string) error
	ListByItem(ctx context.Context, itemID int64) ([]string, error)
	DeleteByItem(ctx context.Context, itemID int64) error
}

// locationReader resolves the foreign references an item may carry.
type locationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
}

type regionReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Region, error)
}

// InventoryService owns the item catalog, the derived tag index, and ranked
// search over it.
type InventoryService struct {
	itemStore     itemRepository
	tagStore      tagRepository
	locationStore locationReader
	regionStore   regionReader
	imgStore      imagestore.ImageStore
	logger        *slog.Logger
}

func NewInventoryService(
	itemStore itemRepository,
	tagStore tagRepository,
	locationStore locationReader,
	regionStore regionReader,
	imgStore imagestore.ImageStore,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		itemStore:     itemStore,
		tagStore:      tagStore,
		locationStore: locationStore,
		regionStore:   regionStore,
		imgStore:      imgStore,
		logger:        logger,
	}
}

// ItemInput carries the writable fields of an inventory item.
type ItemInput struct {
	Name        string
	Description string
	Quantity    int
	ImagePath   string
	LocationID  *int64
	RegionID    *int64
}

func (s *InventoryService) validateInput(ctx context.Context, in ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "must not be empty")
	}
	if in.Quantity < 0 {
		return domain.Invalid("quantity", "must not be negative")
	}
	if in.RegionID != nil && in.LocationID == nil {
		return domain.Invalid("regionId", "requires a locationId")
	}
	if in.LocationID != nil {
		loc, err := s.locationStore.GetByID(ctx, *in.LocationID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("location %d: %w", *in.LocationID, domain.ErrConstraintViolation)
		}
	}
	if in.RegionID != nil {
		reg, err := s.regionStore.GetByID(ctx, *in.RegionID)
		if err != nil {
			return err
		}
		if reg == nil {
			return fmt.Errorf("region %d: %w", *in.RegionID, domain.ErrConstraintViolation)
		}
		if reg.LocationID != *in.LocationID {
			return fmt.Errorf("region %d belongs to location %d, not %d: %w",
				*in.RegionID, reg.LocationID, *in.LocationID, domain.ErrConstraintViolation)
		}
	}
	return nil
}

// CreateItem persists the item, then derives and stores its search tags.
// Tag indexing is a best-effort side channel: a failure is logged and the
// created item stands, so a concurrent search may briefly see the item
// before its tags.
func (s *InventoryService) CreateItem(ctx context.Context, in ItemInput) (*domain.Item, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	item, err := s.itemStore.Create(ctx, strings.TrimSpace(in.Name), in.Description, in.Quantity, in.ImagePath, in.LocationID, in.RegionID)
	if err != nil {
		return nil, err
	}

	s.indexTags(ctx, item)
	return item, nil
}

// UpdateItem rewrites the item's fields and recomputes its tags wholesale,
// whether or not name or description changed.
func (s *InventoryService) UpdateItem(ctx context.Context, id int64, in ItemInput) (*domain.Item, error) {
	current, err := s.itemStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	imagePath := in.ImagePath
	if imagePath == "" {
		imagePath = current.ImagePath
	}

	if err := s.itemStore.Update(ctx, id, strings.TrimSpace(in.Name), in.Description, in.Quantity, imagePath, in.LocationID, in.RegionID); err != nil {
		return nil, err
	}

	if in.ImagePath != "" && current.ImagePath != "" && current.ImagePath != in.ImagePath {
		if err := s.imgStore.Delete(ctx, current.ImagePath); err != nil {
			s.logger.Error("failed to delete replaced item image", "path", current.ImagePath, "error", err)
		}
	}

	item, err := s.itemStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.indexTags(ctx, item)
	return item, nil
}

func (s *InventoryService) indexTags(ctx context.Context, item *domain.Item) {
	tags := DeriveTags(item.Name, item.Description)
	if err := s.tagStore.Replace(ctx, item.ID, tags); err != nil {
		s.logger.Error("failed to index item tags", "item_id", item.ID, "error", err)
	}
}

// DeriveTags computes the search tags for an item: the lowercased name as
// one tag, plus every description token that, lowercased and stripped of
// non-alphanumeric runes, is longer than three characters. Duplicates
// collapse; order follows first appearance.
func DeriveTags(name, description string) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	if name != "" {
		add(strings.ToLower(name))
	}

	for _, word := range strings.Fields(description) {
		token := stripNonAlnum(strings.ToLower(word))
		if len(token) > 3 {
			add(token)
		}
	}

	return tags
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.itemStore.GetByID(ctx, id)
}

func (s *InventoryService) ItemTags(ctx context.Context, id int64) ([]string, error) {
	return s.tagStore.ListByItem(ctx, id)
}

func (s *InventoryService) ListItems(ctx context.Context, locationID, regionID *int64) ([]*domain.Item, error) {
	return s.itemStore.List(ctx, locationID, regionID)
}

// DeleteItem removes the item and its tags, then deletes the stored image.
// The image delete runs only after the row delete and never fails the
// operation.
func (s *InventoryService) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.itemStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.tagStore.DeleteByItem(ctx, id); err != nil {
		return err
	}
	if err := s.itemStore.Delete(ctx, id); err != nil {
		return err
	}

	if item.ImagePath != "" {
		if err := s.imgStore.Delete(ctx, item.ImagePath); err != nil {
			s.logger.Error("failed to delete item image", "path", item.ImagePath, "error", err)
		}
	}

	return nil
}

// ConsumeOne decrements the item's quantity by one, refusing to go below
// zero.
func (s *InventoryService) ConsumeOne(ctx context.Context, id int64) (*domain.Item, error) {
	return s.itemStore.DecrementQuantity(ctx, id)
}

// Rank classes for search results, lowest sorts first.
const (
	rankExactName    = 1
	rankNamePrefix   = 2
	rankNameContains = 3
	rankOtherField   = 4
)

// Search returns items matching the query, best match first. An empty query
// returns no results. Matches are ranked in four classes on the name field,
// then alphabetically by name within a class, so equal inputs always produce
// the same order.
func (s *InventoryService) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Item{}, nil
	}

	items, err := s.itemStore.SearchCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(query)
	class := func(item *domain.Item) int {
		name := strings.ToLower(item.Name)
		switch {
		case name == lowered:
			return rankExactName
		case strings.HasPrefix(name, lowered):
			return rankNamePrefix
		case strings.Contains(name, lowered):
			return rankNameContains
		default:
			return rankOtherField
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := class(items[i]), class(items[j])
		if ci != cj {
			return ci < cj
		}
		ni, nj := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if ni != nj {
			return ni < nj
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// Highlight bundles what a frontend needs to pinpoint an item: the owning
// location, the region rectangle, and the region's center point.
type Highlight struct {
	Item     *domain.Item
	Location *domain.Location
	Region   *domain.Region
	CenterX  float64
	CenterY  float64
}

// HighlightItem resolves the item's location and region for pinpoint
// display. Items without both a location and a region cannot be highlighted.
func (s *InventoryService) HighlightItem(ctx context.Context, itemID int64) (*Highlight, error) {
	item, err := s.itemStore.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if item.LocationID == nil || item.RegionID == nil {
		return nil, domain.Invalid("item", "has no location and region to highlight")
	}

	loc, err := s.locationStore.GetByID(ctx, *item.LocationID)
	if err != nil {
		return nil, err
	}
	reg, err := s.regionStore.GetByID(ctx, *item.RegionID)
	if err != nil {
		return nil, err
	}
	if loc == nil || reg == nil {
		return nil, domain.ErrNotFound
	}

	cx, cy := reg.Center()
	return &Highlight{Item: item, Location: loc, Region: reg, CenterX: cx, CenterY: cy}, nil
}
