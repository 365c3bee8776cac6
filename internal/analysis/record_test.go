package analysis

import (
	"bytes"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
)

func sampleResult() *Result {
	return &Result{
		Width:  200,
		Height: 100,
		Records: []ShapeRecord{
			{Index: 1, Label: detection.ShapeSquare, Area: 9801, Perimeter: 396, Circularity: 0.7854, Vertices: 4,
				Bounds: detection.Bounds{X1: 10, Y1: 10, X2: 109, Y2: 109}},
			{Index: 2, Label: detection.ShapeCircle, Area: 7823.5, Perimeter: 331.12, Circularity: 0.8966, Vertices: 9,
				Bounds: detection.Bounds{X1: 120, Y1: 20, X2: 170, Y2: 70}},
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleResult().WriteTable(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Detected Objects: 2", lines[0])
	assert.Contains(t, lines[1], "SHAPE")
	assert.Contains(t, lines[2], "Square")
	assert.Contains(t, lines[2], "9801.00")
	assert.Contains(t, lines[3], "Circle")
	assert.Contains(t, lines[3], "331.12")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Result{}).WriteTable(&buf))
	assert.Equal(t, "Detected Objects: 0\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleResult().WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "source,object,shape,area,perimeter,circularity,vertices,x1,y1,x2,y2", lines[0])
	assert.Equal(t, ",2,Circle,7823.50,331.12,0.8966,9,120,20,170,70", lines[2])
}

func TestLabels(t *testing.T) {
	res := sampleResult()
	res.Records = append(res.Records, ShapeRecord{Index: 3, Label: detection.ShapeSquare})
	assert.Equal(t, map[detection.Shape]int{detection.ShapeSquare: 2, detection.ShapeCircle: 1}, res.Labels())
}

func TestRecordJSONOmitsBoundary(t *testing.T) {
	rec := ShapeRecord{
		Index:    1,
		Label:    detection.ShapeTriangle,
		Boundary: detection.Boundary{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 3, Y: 4}},
		Polygon:  detection.Polygon{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 3, Y: 4}},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "boundary")
	assert.NotContains(t, string(data), "aspect_ratio")
	assert.Contains(t, string(data), `"label":"Triangle"`)
}

func TestShift(t *testing.T) {
	rec := ShapeRecord{
		Bounds:   detection.Bounds{X1: 1, Y1: 2, X2: 5, Y2: 6},
		Anchor:   detection.Point{X: 1, Y: 2},
		Boundary: detection.Boundary{{X: 1, Y: 2}},
		Polygon:  detection.Polygon{{X: 5, Y: 6}},
	}
	orig := rec.Boundary
	rec.shift(image.Pt(10, 20))

	assert.Equal(t, detection.Bounds{X1: 11, Y1: 22, X2: 15, Y2: 26}, rec.Bounds)
	assert.Equal(t, detection.Point{X: 11, Y: 22}, rec.Anchor)
	assert.Equal(t, detection.Point{X: 11, Y: 22}, rec.Boundary[0])
	assert.Equal(t, detection.Point{X: 15, Y: 26}, rec.Polygon[0])
	assert.Equal(t, detection.Point{X: 1, Y: 2}, orig[0])
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.14, round(3.14159, 2))
	assert.Equal(t, 7823.46, round(7823.456, 2))
	assert.Equal(t, 0.8967, round(0.89666, 4))
}
