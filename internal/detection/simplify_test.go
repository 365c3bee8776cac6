package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// densePath walks the closed polygon through corners one pixel at a time,
// the way a traced boundary without compression would.
func densePath(corners []Point) Boundary {
	var out Boundary
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
		for p := a; p != b; p = (Point{X: p.X + dx, Y: p.Y + dy}) {
			out = append(out, p)
		}
	}
	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func rotate(b Boundary, k int) Boundary {
	out := make(Boundary, 0, len(b))
	out = append(out, b[k:]...)
	return append(out, b[:k]...)
}

func TestSimplifySquare(t *testing.T) {
	b := densePath(rectPoints(0, 0, 100, 100))
	poly, err := Simplify(b, 0.015)
	require.NoError(t, err)
	assert.Equal(t, Polygon(rectPoints(0, 0, 100, 100)), poly)
}

func TestSimplifySquareStartingMidEdge(t *testing.T) {
	b := rotate(densePath(rectPoints(0, 0, 100, 100)), 50)
	require.Equal(t, Point{X: 50, Y: 0}, b[0])

	poly, err := Simplify(b, 0.015)
	require.NoError(t, err)
	assert.Len(t, poly, 4)
	assert.NotContains(t, poly, Point{X: 50, Y: 0})
}

// chamferedSquare cuts each corner of a side×side square with a 45° edge of
// c pixels, the way dilation rounds the corners of an edge band.
func chamferedSquare(side, c int) Boundary {
	return densePath([]Point{
		{X: c, Y: 0}, {X: side - c, Y: 0}, {X: side, Y: c}, {X: side, Y: side - c},
		{X: side - c, Y: side}, {X: c, Y: side}, {X: 0, Y: side - c}, {X: 0, Y: c},
	})
}

func TestSimplifyChamferedCorners(t *testing.T) {
	tests := []struct {
		side, chamfer int
	}{
		{40, 3},
		{50, 4},
		{60, 4},
		{80, 5},
		{100, 6},
	}
	for _, tt := range tests {
		poly, err := Simplify(chamferedSquare(tt.side, tt.chamfer), 0.015)
		require.NoError(t, err)
		assert.Len(t, poly, 4, "side %d chamfer %d: %v", tt.side, tt.chamfer, poly)
	}
}

func TestSimplifyTriangle(t *testing.T) {
	b := densePath([]Point{{X: 0, Y: 0}, {X: 120, Y: 0}, {X: 0, Y: 120}})
	poly, err := Simplify(b, 0.02)
	require.NoError(t, err)
	assert.Len(t, poly, 3)
}

func TestSimplifyCircleKeepsDetail(t *testing.T) {
	b := Boundary(regularPolygon(300, 300, 100, 64))
	poly, err := Simplify(b, 0.015)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(poly), 7)
	assert.Less(t, len(poly), 64)
}

func TestSimplifyCoarserEpsilonKeepsFewerVertices(t *testing.T) {
	b := Boundary(regularPolygon(300, 300, 100, 64))
	fine, err := Simplify(b, 0.015)
	require.NoError(t, err)
	coarse, err := Simplify(b, 0.04)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(coarse), len(fine))
}

func TestSimplifyPreservesOrderAndInput(t *testing.T) {
	b := densePath(rectPoints(5, 5, 60, 30))
	before := append(Boundary(nil), b...)

	poly, err := Simplify(b, 0.015)
	require.NoError(t, err)
	assert.Equal(t, before, b)

	// Vertices appear in the same order as in the boundary.
	last := -1
	for _, v := range poly {
		idx := -1
		for i, p := range b {
			if p == v {
				idx = i
				break
			}
		}
		require.GreaterOrEqual(t, idx, 0)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestSimplifyDegenerate(t *testing.T) {
	_, err := Simplify(Boundary{{X: 0, Y: 0}, {X: 1, Y: 1}}, 0.015)
	assert.True(t, errors.Is(err, ErrDegenerateShape))

	// A one-pixel-wide line traced out and back collapses to its end points.
	line := Boundary{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 10, Y: 0}}
	_, err = Simplify(line, 0.015)
	assert.ErrorIs(t, err, ErrDegenerateShape)
}
