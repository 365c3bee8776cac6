package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// circularityEpsilon keeps Circularity finite for zero-perimeter input.
const circularityEpsilon = 1e-6

// Area returns the area enclosed by the closed point sequence using the
// shoelace formula. The result is non-negative regardless of orientation.
func Area(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		sum += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed curve through pts, including
// the closing edge from the last point to the first.
func Perimeter(pts []Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	lengths := make([]float64, n)
	for i := 0; i < n; i++ {
		lengths[i] = r2.Norm(r2.Sub(vec(pts[(i+1)%n]), vec(pts[i])))
	}
	return floats.Sum(lengths)
}

// Circularity returns 4πA / (P² + ε): 1 for a perfect disc, π/4 for a square
// and smaller for elongated or ragged outlines.
func Circularity(area, perimeter float64) float64 {
	return 4 * math.Pi * area / (perimeter*perimeter + circularityEpsilon)
}

// BoundingBox returns the axis-aligned box spanned by pts. Width and Height
// of the result are the coordinate extents, so collinear points along one
// axis produce a zero-height (or zero-width) box.
func BoundingBox(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{X1: pts[0].X, Y1: pts[0].Y, X2: pts[0].X, Y2: pts[0].Y}
	for _, p := range pts[1:] {
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X)
		b.Y2 = max(b.Y2, p.Y)
	}
	return b
}

// RotatedRect is a rectangle of arbitrary orientation.
type RotatedRect struct {
	// Center of the rectangle.
	Center r2.Vec `json:"center"`

	// Width is measured along the direction given by Angle, Height across it.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Angle is the orientation of the Width side in radians.
	Angle float64 `json:"angle"`
}

// Area returns Width × Height.
func (r RotatedRect) Area() float64 { return r.Width * r.Height }

// AspectRatio returns max(Width, Height) / min(Width, Height), or +Inf when
// the rectangle is flat.
func (r RotatedRect) AspectRatio() float64 {
	return aspectRatio(r.Width, r.Height)
}

func aspectRatio(w, h float64) float64 {
	lo, hi := math.Min(w, h), math.Max(w, h)
	if lo <= 0 {
		return math.Inf(1)
	}
	return hi / lo
}

// MinAreaRect returns the smallest-area rectangle, at any orientation, that
// contains every point.
//
// The rectangle is found with rotating calipers: one side of the optimal
// rectangle is collinear with an edge of the convex hull, so each hull edge
// is tried as a base direction.
func MinAreaRect(pts []Point) RotatedRect {
	hull := convexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: hull[0]}
	}

	best := RotatedRect{Width: math.Inf(1), Height: math.Inf(1)}
	bestArea := math.Inf(1)
	for i := range hull {
		edge := r2.Sub(hull[(i+1)%len(hull)], hull[i])
		if r2.Norm(edge) == 0 {
			continue
		}
		u := r2.Unit(edge)
		n := r2.Vec{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minN, maxN := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			du, dn := r2.Dot(p, u), r2.Dot(p, n)
			minU, maxU = math.Min(minU, du), math.Max(maxU, du)
			minN, maxN = math.Min(minN, dn), math.Max(maxN, dn)
		}

		w, h := maxU-minU, maxN-minN
		if area := w * h; area < bestArea {
			bestArea = area
			cu, cn := (minU+maxU)/2, (minN+maxN)/2
			best = RotatedRect{
				Center: r2.Add(r2.Scale(cu, u), r2.Scale(cn, n)),
				Width:  w,
				Height: h,
				Angle:  math.Atan2(u.Y, u.X),
			}
		}
	}
	return best
}

// convexHull returns the hull vertices in counter-clockwise order (in a
// y-up frame) using Andrew's monotone chain. Collinear points are dropped.
func convexHull(pts []Point) []r2.Vec {
	vs := make([]r2.Vec, len(pts))
	for i, p := range pts {
		vs[i] = vec(p)
	}
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].X != vs[j].X {
			return vs[i].X < vs[j].X
		}
		return vs[i].Y < vs[j].Y
	})

	// Deduplicate.
	uniq := vs[:0]
	for i, v := range vs {
		if i == 0 || v != vs[i-1] {
			uniq = append(uniq, v)
		}
	}
	vs = uniq
	if len(vs) < 3 {
		return vs
	}

	turn := func(o, a, b r2.Vec) float64 {
		return r2.Cross(r2.Sub(a, o), r2.Sub(b, o))
	}

	hull := make([]r2.Vec, 0, 2*len(vs))
	for _, v := range vs {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	lower := len(hull) + 1
	for i := len(vs) - 2; i >= 0; i-- {
		v := vs[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], v) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, v)
	}
	return hull[:len(hull)-1]
}

func vec(p Point) r2.Vec {
	return r2.Vec{X: float64(p.X), Y: float64(p.Y)}
}
