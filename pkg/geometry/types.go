// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
	"sort"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the x coordinate one past the right edge.
func (r RectInt) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r RectInt) Bottom() int { return r.Y + r.Height }

// Intersects returns true if this rectangle intersects with another.
func (r RectInt) Intersects(other RectInt) bool {
	return r.X < other.Right() && r.Right() > other.X &&
		r.Y < other.Bottom() && r.Bottom() > other.Y
}

// Union returns the smallest rectangle containing both rectangles.
func (r RectInt) Union(other RectInt) RectInt {
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	x2 := max(r.Right(), other.Right())
	y2 := max(r.Bottom(), other.Bottom())
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Intersect returns the overlapping region of two rectangles.
// The result is empty when they do not intersect.
func (r RectInt) Intersect(other RectInt) RectInt {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	return RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// MergeOverlapping repeatedly unions intersecting rectangles until no
// two rectangles in the result overlap. Input order is not preserved.
func MergeOverlapping(rects []RectInt) []RectInt {
	merged := append([]RectInt(nil), rects...)
	for {
		changed := false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				if merged[i].Intersects(merged[j]) {
					merged[i] = merged[i].Union(merged[j])
					merged = append(merged[:j], merged[j+1:]...)
					changed = true
					j--
				}
			}
		}
		if !changed {
			return merged
		}
	}
}

// FilterBySize keeps rectangles strictly wider than minWidth and strictly
// taller than minHeight.
func FilterBySize(rects []RectInt, minWidth, minHeight int) []RectInt {
	var kept []RectInt
	for _, r := range rects {
		if r.Width > minWidth && r.Height > minHeight {
			kept = append(kept, r)
		}
	}
	return kept
}

// SortLeftToRight sorts rectangles by increasing left edge, in place,
// and returns the slice.
func SortLeftToRight(rects []RectInt) []RectInt {
	sort.Slice(rects, func(i, j int) bool {
		if rects[i].X != rects[j].X {
			return rects[i].X < rects[j].X
		}
		return rects[i].Y < rects[j].Y
	})
	return rects
}
