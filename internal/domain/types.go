package domain

import "time"

type Location struct {
	ID           int64
	Name         string
	ParentID     *int64
	Description  string
	LocationType string
	ImagePath    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Region is a named rectangle drawn over its location's reference image.
// Position is the insertion index within the location's region set and is
// the tie-break key when overlapping regions both contain a point.
type Region struct {
	ID         int64
	LocationID int64
	Name       string
	X          int
	Y          int
	Width      int
	Height     int
	Color      string
	Position   int
}

// Contains reports whether the pixel point (px, py) falls inside the
// rectangle, edges included.
func (r *Region) Contains(px, py int) bool {
	return px >= r.X && px <= r.X+r.Width && py >= r.Y && py <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle, used to pinpoint an item
// on the location image.
func (r *Region) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

type Item struct {
	ID          int64
	Name        string
	Description string
	Quantity    int
	ImagePath   string
	LocationID  *int64
	RegionID    *int64
	// Joined display names, populated by the store on reads.
	LocationName string
	RegionName   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Breadcrumb is one hop of a location's ancestor chain, root-first.
type Breadcrumb struct {
	ID   int64
	Name string
}
