package web

import (
	"time"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/service"
)

// The wire types below are the explicit mapping layer between the store's
// snake_case rows and the API's camelCase JSON.

type locationResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	LocationType string    `json:"locationType,omitempty"`
	ParentID     *int64    `json:"parentId"`
	ImagePath    *string   `json:"imagePath"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toLocationResponse(loc *domain.Location) locationResponse {
	return locationResponse{
		ID:           loc.ID,
		Name:         loc.Name,
		Description:  loc.Description,
		LocationType: loc.LocationType,
		ParentID:     loc.ParentID,
		ImagePath:    uploadURL(loc.ImagePath),
		CreatedAt:    loc.CreatedAt,
		UpdatedAt:    loc.UpdatedAt,
	}
}

func toLocationResponses(locs []*domain.Location) []locationResponse {
	out := make([]locationResponse, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toLocationResponse(loc))
	}
	return out
}

type regionResponse struct {
	ID         int64  `json:"id"`
	LocationID int64  `json:"locationId"`
	Name       string `json:"name"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Color      string `json:"color,omitempty"`
}

func toRegionResponse(reg *domain.Region) regionResponse {
	return regionResponse{
		ID:         reg.ID,
		LocationID: reg.LocationID,
		Name:       reg.Name,
		X:          reg.X,
		Y:          reg.Y,
		Width:      reg.Width,
		Height:     reg.Height,
		Color:      reg.Color,
	}
}

func toRegionResponses(regions []*domain.Region) []regionResponse {
	out := make([]regionResponse, 0, len(regions))
	for _, reg := range regions {
		out = append(out, toRegionResponse(reg))
	}
	return out
}

// regionRequest is one entry of a whole-set region replacement.
type regionRequest struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color"`
}

func (r regionRequest) toDomain() *domain.Region {
	return &domain.Region{
		Name:   r.Name,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Color:  r.Color,
	}
}

type itemResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Quantity     int       `json:"quantity"`
	ImagePath    *string   `json:"imagePath"`
	LocationID   *int64    `json:"locationId"`
	LocationName *string   `json:"locationName"`
	RegionID     *int64    `json:"regionId"`
	RegionName   *string   `json:"regionName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toItemResponse(item *domain.Item) itemResponse {
	resp := itemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		ImagePath:   uploadURL(item.ImagePath),
		LocationID:  item.LocationID,
		RegionID:    item.RegionID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.LocationID != nil {
		resp.LocationName = &item.LocationName
	}
	if item.RegionID != nil {
		resp.RegionName = &item.RegionName
	}
	return resp
}

func toItemResponses(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

type breadcrumbResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toBreadcrumbResponses(crumbs []domain.Breadcrumb) []breadcrumbResponse {
	out := make([]breadcrumbResponse, 0, len(crumbs))
	for _, c := range crumbs {
		out = append(out, breadcrumbResponse{ID: c.ID, Name: c.Name})
	}
	return out
}

type highlightResponse struct {
	Item     breadcrumbResponse `json:"item"`
	Location breadcrumbResponse `json:"location"`
	Region   regionResponse     `json:"region"`
	Position pointResponse      `json:"ledPosition"`
}

type pointResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toHighlightResponse(h *service.Highlight) highlightResponse {
	return highlightResponse{
		Item:     breadcrumbResponse{ID: h.Item.ID, Name: h.Item.Name},
		Location: breadcrumbResponse{ID: h.Location.ID, Name: h.Location.Name},
		Region:   toRegionResponse(h.Region),
		Position: pointResponse{X: h.CenterX, Y: h.CenterY},
	}
}

// uploadURL maps a stored path to its public URL, or nil when there is no
// image.
func uploadURL(storedPath string) *string {
	if storedPath == "" {
		return nil
	}
	url := "/uploads/" + storedPath
	return &url
}
