package detection

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simplify reduces a closed boundary to the vertices needed to stay within
// epsilon = epsFraction × Perimeter(b) of the original outline.
//
// Scaling the tolerance with the perimeter makes the result independent of
// object size: a value around 0.015 keeps enough detail to separate
// pentagons, hexagons and circles, while 0.04 collapses outlines towards
// triangles and quadrilaterals.
//
// The output is a new slice; b is not modified. Vertices keep the boundary's
// order and the polygon is implicitly closed. Returns ErrDegenerateShape
// when fewer than three vertices remain.
func Simplify(b Boundary, epsFraction float64) (Polygon, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("%w: boundary has %d points", ErrDegenerateShape, len(b))
	}

	eps := epsFraction * Perimeter(b)
	keep := douglasPeuckerClosed(b, eps)
	keep = mergeVertices(b, keep, eps)

	poly := make(Polygon, len(keep))
	for i, idx := range keep {
		poly[i] = b[idx]
	}
	if len(poly) < 3 {
		return nil, fmt.Errorf("%w: simplified to %d vertices", ErrDegenerateShape, len(poly))
	}
	return poly, nil
}

// douglasPeuckerClosed returns the sorted indices of the points kept from a
// closed curve.
//
// A closed curve has no natural end points, so the curve is split at point 0
// and the point farthest from it; each half is then simplified as an open
// polyline with the classic Douglas–Peucker recursion (iteratively, with an
// explicit stack).
func douglasPeuckerClosed(pts Boundary, eps float64) []int {
	n := len(pts)
	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := r2.Norm(r2.Sub(vec(pts[i]), vec(pts[0]))); d > farDist {
			far, farDist = i, d
		}
	}
	if far == 0 {
		return []int{0}
	}

	kept := map[int]bool{0: true, far: true}
	type span struct{ from, to int } // indices modulo n, walking forward
	stack := []span{{0, far}, {far, n}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.to-s.from < 2 {
			continue
		}

		a, b := vec(pts[s.from%n]), vec(pts[s.to%n])
		split, maxDist := -1, eps
		for i := s.from + 1; i < s.to; i++ {
			if d := segmentDistance(vec(pts[i%n]), a, b); d > maxDist {
				split, maxDist = i, d
			}
		}
		if split < 0 {
			continue
		}
		kept[split%n] = true
		stack = append(stack, span{s.from, split}, span{split, s.to})
	}

	idx := make([]int, 0, len(kept))
	for i := range kept {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// mergeVertices replaces adjacent vertex pairs by the single boundary point
// between them that keeps every boundary point within eps of the outline.
// Each round applies the merge with the smallest resulting deviation, until
// no pair can merge or three vertices remain.
//
// A rounded corner wider than eps can leave two vertices after the split at
// point 0. Candidates include both ends of the pair, so a vertex lying on
// the chord of its neighbors is dropped as well.
func mergeVertices(pts Boundary, keep []int, eps float64) []int {
	n := len(pts)
	for len(keep) > 3 {
		k := len(keep)
		best, bestPair, bestDev := -1, -1, eps
		for i := 0; i < k; i++ {
			prev, a, b, next := keep[(i+k-1)%k], keep[i], keep[(i+1)%k], keep[(i+2)%k]
			for m := a; ; m = (m + 1) % n {
				dev := math.Max(maxDeviation(pts, prev, m, bestDev), maxDeviation(pts, m, next, bestDev))
				if dev <= bestDev && (best < 0 || dev < bestDev) {
					best, bestPair, bestDev = m, i, dev
				}
				if m == b {
					break
				}
			}
		}
		if best < 0 {
			break
		}

		out := make([]int, 0, k-1)
		for j, idx := range keep {
			if j != bestPair && j != (bestPair+1)%k {
				out = append(out, idx)
			}
		}
		keep = append(out, best)
		sort.Ints(keep)
	}
	return keep
}

// maxDeviation returns the largest distance from the boundary points strictly
// between from and to (walking forward, wrapping at the end) to the chord
// joining them. It stops early once the distance exceeds limit.
func maxDeviation(pts Boundary, from, to int, limit float64) float64 {
	n := len(pts)
	a, b := vec(pts[from]), vec(pts[to])
	worst := 0.0
	for j := (from + 1) % n; j != to; j = (j + 1) % n {
		if d := segmentDistance(vec(pts[j]), a, b); d > worst {
			worst = d
			if worst > limit {
				break
			}
		}
	}
	return worst
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}
