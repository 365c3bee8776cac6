package detection

import (
	"errors"
	"image"
)

// ErrDegenerateShape reports a boundary that cannot be classified: it
// simplifies to fewer than three vertices, or its fitted rectangle has zero
// width or height. Callers skip such boundaries and continue.
var ErrDegenerateShape = errors.New("degenerate shape")

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// Both corners are inclusive pixel positions, so a box around a single
// pixel has X1 == X2 and Y1 == Y2.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width is the horizontal extent X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height is the vertical extent Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Boundary is the closed outline of one connected foreground region, as an
// ordered list of pixel positions. The edge from the last point back to the
// first is implicit. Traced boundaries always hold at least three points.
type Boundary []Point

// Polygon is a simplified boundary: an ordered subset of a Boundary's points,
// implicitly closed.
type Polygon []Point

// ImagePoints converts the points for use with image drawing helpers.
func (b Boundary) ImagePoints() []image.Point {
	return toImagePoints(b)
}

// ImagePoints converts the vertices for use with image drawing helpers.
func (p Polygon) ImagePoints() []image.Point {
	return toImagePoints(p)
}

func toImagePoints(pts []Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = image.Pt(p.X, p.Y)
	}
	return out
}

// Shape is the label assigned to a classified boundary.
type Shape string

// Shape labels. ShapePolygon is the catch-all for outlines that match
// nothing more specific.
const (
	ShapeTriangle  Shape = "Triangle"
	ShapeSquare    Shape = "Square"
	ShapeRectangle Shape = "Rectangle"
	ShapePentagon  Shape = "Pentagon"
	ShapeHexagon   Shape = "Hexagon"
	ShapeCircle    Shape = "Circle"
	ShapePolygon   Shape = "Polygon"
)

// String returns the label text.
func (s Shape) String() string { return string(s) }
