package detection

import (
	"fmt"

	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// AreaPolicy selects how the minimum boundary area is derived.
type AreaPolicy string

const (
	// AreaRelative scales the minimum with the image: Value is a fraction of
	// width × height (0.001 discards anything under 0.1% of the frame).
	AreaRelative AreaPolicy = "relative_fraction"

	// AreaAbsolute uses Value directly as a floor in square pixels.
	AreaAbsolute AreaPolicy = "absolute_floor"
)

// MinArea is the size filter applied to traced boundaries.
type MinArea struct {
	Policy AreaPolicy `json:"policy"`
	Value  float64    `json:"value"`
}

// Threshold returns the minimum area in square pixels for a width×height
// mask.
func (m MinArea) Threshold(width, height int) float64 {
	if m.Policy == AreaAbsolute {
		return m.Value
	}
	return m.Value * float64(width) * float64(height)
}

// Extract traces the outer boundary of every connected foreground region in
// mask and keeps those whose enclosed area is at least the minimum.
//
// Boundaries are returned in discovery order (raster order of each region's
// topmost-leftmost pixel). Regions nested inside the hole of another region
// are not reported. Returns imaging.ErrInvalidInput for an empty mask.
func Extract(mask *imaging.Mask, minArea MinArea) ([]Boundary, error) {
	if mask == nil || mask.Width <= 0 || mask.Height <= 0 {
		return nil, fmt.Errorf("%w: empty mask", imaging.ErrInvalidInput)
	}
	return FilterByArea(TraceExternal(mask), minArea.Threshold(mask.Width, mask.Height)), nil
}

// FilterByArea keeps the boundaries whose area is >= threshold, preserving
// order.
func FilterByArea(boundaries []Boundary, threshold float64) []Boundary {
	kept := make([]Boundary, 0, len(boundaries))
	for _, b := range boundaries {
		if Area(b) >= threshold {
			kept = append(kept, b)
		}
	}
	return kept
}

// TraceExternal returns the outer boundary of every outermost connected
// foreground region of mask, without any size filtering.
//
// # Algorithm
//
//  1. Labeling: flood-fill groups foreground pixels into 8-connected regions
//  2. Outside detection: a 4-connected flood-fill of the background from the
//     image border finds the background that is not enclosed by any region
//  3. Nesting: a region whose topmost-leftmost pixel does not touch that
//     outside background sits inside another region's hole and is skipped
//  4. Tracing: Moore-neighbor tracing walks the outer border clockwise from
//     the topmost-leftmost pixel, merging runs of collinear steps so straight
//     edges keep only their end points
//
// Regions whose outline has fewer than three points (single pixels, short
// lines) are dropped.
func TraceExternal(mask *imaging.Mask) []Boundary {
	w, h := mask.Width, mask.Height
	labels := make([]int, w*h)
	outside := outsideBackground(mask)

	boundaries := make([]Boundary, 0)
	next := 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask.Pix[y*w+x] || labels[y*w+x] != 0 {
				continue
			}
			floodFill(mask, labels, x, y, next)
			next++

			// (x, y) is the region's topmost-leftmost pixel, so the pixel
			// above it lies on the region's outer side.
			if y > 0 && !outside[(y-1)*w+x] {
				continue
			}

			if b := traceBoundary(mask, Point{X: x, Y: y}); len(b) >= 3 {
				boundaries = append(boundaries, b)
			}
		}
	}
	return boundaries
}

// floodFill labels the 8-connected foreground region containing (startX,
// startY).
//
// Uses an explicit stack rather than recursion so large regions cannot
// overflow the goroutine stack.
func floodFill(mask *imaging.Mask, labels []int, startX, startY, label int) {
	w := mask.Width
	stack := []Point{{X: startX, Y: startY}}
	labels[startY*w+startX] = label

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if !mask.At(nx, ny) || labels[ny*w+nx] != 0 {
					continue
				}
				labels[ny*w+nx] = label
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}
}

// outsideBackground marks the background pixels 4-connected to the image
// border. 4-connectivity for background pairs with 8-connectivity for
// foreground so that diagonal foreground steps seal a hole.
func outsideBackground(mask *imaging.Mask) []bool {
	w, h := mask.Width, mask.Height
	outside := make([]bool, w*h)
	stack := make([]Point, 0, 2*(w+h))

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if mask.Pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, Point{X: x, Y: y})
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return outside
}

// mooreOffsets lists the 8 neighbors clockwise on screen, starting east.
var mooreOffsets = [8]Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

func mooreIndex(dx, dy int) int {
	for i, o := range mooreOffsets {
		if o.X == dx && o.Y == dy {
			return i
		}
	}
	return 0
}

// traceBoundary walks the outer border of the region containing start, which
// must be the region's topmost-leftmost pixel.
func traceBoundary(mask *imaging.Mask, start Point) Boundary {
	pts := Boundary{start}

	// The west neighbor of the topmost-leftmost pixel is background.
	first, back, ok := mooreStep(mask, start, Point{X: start.X - 1, Y: start.Y})
	if !ok {
		return pts
	}

	cur := first
	maxSteps := 4*mask.Width*mask.Height + 8
	for step := 0; step < maxSteps; step++ {
		next, nextBack, _ := mooreStep(mask, cur, back)

		// Jacob's stopping criterion: back at the start and about to repeat
		// the first move.
		if cur == start && next == first {
			break
		}
		pts = appendCompressed(pts, cur)
		cur, back = next, nextBack
	}
	return pts
}

// mooreStep scans the neighbors of cur clockwise, starting just after back,
// and returns the first foreground pixel with the background pixel examined
// immediately before it as the new backtrack.
func mooreStep(mask *imaging.Mask, cur, back Point) (Point, Point, bool) {
	start := mooreIndex(back.X-cur.X, back.Y-cur.Y)
	for k := 1; k <= 8; k++ {
		i := (start + k) % 8
		p := Point{X: cur.X + mooreOffsets[i].X, Y: cur.Y + mooreOffsets[i].Y}
		if mask.At(p.X, p.Y) {
			j := (start + k - 1) % 8
			return p, Point{X: cur.X + mooreOffsets[j].X, Y: cur.Y + mooreOffsets[j].Y}, true
		}
	}
	return cur, back, false
}

// appendCompressed appends p, replacing the previous point when it lies on
// a straight run (same direction, no reversal) between its neighbors.
func appendCompressed(pts Boundary, p Point) Boundary {
	n := len(pts)
	if n >= 2 {
		a, b := pts[n-2], pts[n-1]
		d1x, d1y := b.X-a.X, b.Y-a.Y
		d2x, d2y := p.X-b.X, p.Y-b.Y
		if d1x*d2y-d1y*d2x == 0 && d1x*d2x+d1y*d2y > 0 {
			pts[n-1] = p
			return pts
		}
	}
	return append(pts, p)
}
