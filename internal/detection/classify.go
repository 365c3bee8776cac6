package detection

import (
	"fmt"
)

// RectFit selects the rectangle used to measure the aspect ratio of
// four-vertex shapes.
type RectFit string

const (
	// RectMinArea fits the minimum-area rectangle at any orientation, so a
	// rotated square is still a square.
	RectMinArea RectFit = "min_area"

	// RectAxisAligned uses the axis-aligned bounding box.
	RectAxisAligned RectFit = "axis_aligned"
)

// ClassifierOptions configures the decision procedure.
type ClassifierOptions struct {
	// CircularityThreshold is the value circularity must exceed for a
	// boundary to be labeled a circle.
	CircularityThreshold float64 `json:"circularity_threshold"`

	// SquareTolerance is the largest long/short side ratio still labeled a
	// square.
	SquareTolerance float64 `json:"square_aspect_tolerance"`

	// CircularityFirst runs the circle test before looking at the vertex
	// count. With it set, near-circular hexagons become circles.
	CircularityFirst bool `json:"circularity_first"`

	RectFit RectFit `json:"rect_fit"`
}

// DefaultClassifierOptions returns the defaults: circle above 0.80, square
// up to a 1.10 ratio, vertex count first, min-area rectangle fit.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		CircularityThreshold: 0.80,
		SquareTolerance:      1.10,
		CircularityFirst:     false,
		RectFit:              RectMinArea,
	}
}

// Classification is the outcome of classifying one boundary.
type Classification struct {
	Shape       Shape   `json:"shape"`
	Circularity float64 `json:"circularity"`
	Vertices    int     `json:"vertices"`

	// AspectRatio is only set for four-vertex shapes.
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

// Classifier maps a boundary and its simplified polygon to a shape label.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	opts ClassifierOptions
}

// NewClassifier returns a classifier using opts. An empty RectFit falls back
// to RectMinArea.
func NewClassifier(opts ClassifierOptions) *Classifier {
	if opts.RectFit == "" {
		opts.RectFit = RectMinArea
	}
	return &Classifier{opts: opts}
}

// Options returns the classifier's configuration.
func (c *Classifier) Options() ClassifierOptions { return c.opts }

// Classify labels the shape outlined by b, whose simplification is p.
//
// # Decision Order
//
// The first matching rule wins:
//
//  1. With CircularityFirst, circularity above the threshold is a Circle
//     whatever the vertex count
//  2. 3 vertices: Triangle
//  3. 4 vertices: Square when the fitted rectangle's long/short ratio is at
//     most SquareTolerance, otherwise Rectangle
//  4. 5 vertices: Pentagon
//  5. 6 vertices: Hexagon
//  6. Anything else: Circle when circularity is above the threshold,
//     otherwise Polygon
//
// The circularity comparison is strict, so a value exactly on the threshold
// is not a circle. The square test is inclusive: a ratio equal to
// SquareTolerance is still a square.
//
// Returns ErrDegenerateShape when p has fewer than three vertices or the
// fitted rectangle of a four-vertex shape has zero width or height.
func (c *Classifier) Classify(b Boundary, p Polygon) (Classification, error) {
	v := len(p)
	if v < 3 {
		return Classification{}, fmt.Errorf("%w: %d vertices", ErrDegenerateShape, v)
	}

	circ := Circularity(Area(b), Perimeter(b))
	result := Classification{Circularity: circ, Vertices: v}

	if c.opts.CircularityFirst && circ > c.opts.CircularityThreshold {
		result.Shape = ShapeCircle
		return result, nil
	}

	switch v {
	case 3:
		result.Shape = ShapeTriangle
	case 4:
		w, h := c.fitRect(b)
		if w <= 0 || h <= 0 {
			return Classification{}, fmt.Errorf("%w: fitted rectangle is %gx%g", ErrDegenerateShape, w, h)
		}
		result.AspectRatio = aspectRatio(w, h)
		if result.AspectRatio > c.opts.SquareTolerance {
			result.Shape = ShapeRectangle
		} else {
			result.Shape = ShapeSquare
		}
	case 5:
		result.Shape = ShapePentagon
	case 6:
		result.Shape = ShapeHexagon
	default:
		if circ > c.opts.CircularityThreshold {
			result.Shape = ShapeCircle
		} else {
			result.Shape = ShapePolygon
		}
	}
	return result, nil
}

func (c *Classifier) fitRect(b Boundary) (float64, float64) {
	if c.opts.RectFit == RectAxisAligned {
		box := BoundingBox(b)
		return float64(box.Width()), float64(box.Height())
	}
	r := MinAreaRect(b)
	return r.Width, r.Height
}
