package analysis

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

func TestAnnotateCopyOnWrite(t *testing.T) {
	img := whiteCanvas(100, 100)
	rec := ShapeRecord{
		Index:    1,
		Label:    detection.ShapeSquare,
		Boundary: squareBoundary(30, 40, 30),
		Bounds:   detection.Bounds{X1: 30, Y1: 40, X2: 60, Y2: 70},
		Anchor:   detection.Point{X: 30, Y: 40},
	}

	out, err := Annotate(img, []ShapeRecord{rec}, imaging.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), out.Bounds())

	green := color.NRGBA{G: 255, A: 255}
	assert.Equal(t, green, color.NRGBAModel.Convert(out.At(45, 40)))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(45, 40))
}

func TestAnnotateLabelPlacement(t *testing.T) {
	img := whiteCanvas(120, 120)
	rec := ShapeRecord{
		Label:    detection.ShapeCircle,
		Boundary: squareBoundary(60, 60, 20),
		Bounds:   detection.Bounds{X1: 60, Y1: 60, X2: 80, Y2: 80},
		Anchor:   detection.Point{X: 60, Y: 60},
	}
	style := imaging.DefaultStyle()

	out, err := Annotate(img, []ShapeRecord{rec}, style)
	require.NoError(t, err)

	// The label sits in the band above the anchor.
	blue := color.NRGBA{B: 255, A: 255}
	found := false
	for y := 60 - style.LabelOffset - labelAscent; y < 60-style.LabelOffset+2; y++ {
		for x := 60; x < 60+7*len("Circle"); x++ {
			if color.NRGBAModel.Convert(out.At(x, y)) == blue {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestAnnotateLabelStaysInside(t *testing.T) {
	img := whiteCanvas(80, 40)
	rec := ShapeRecord{
		Label:    detection.ShapeTriangle,
		Boundary: detection.Boundary{{X: 10, Y: 0}, {X: 30, Y: 30}, {X: 0, Y: 30}},
		Bounds:   detection.Bounds{X1: 0, Y1: 0, X2: 30, Y2: 30},
	}
	out, err := Annotate(img, []ShapeRecord{rec}, imaging.DefaultStyle())
	require.NoError(t, err)

	blue := color.NRGBA{B: 255, A: 255}
	found := false
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(out.At(x, y)) == blue {
				found = true
				break
			}
		}
	}
	assert.True(t, found)
}

func TestAnnotateNonZeroOrigin(t *testing.T) {
	base := whiteCanvas(100, 100)
	sub := base.SubImage(image.Rect(50, 50, 100, 100))

	out, err := Annotate(sub, nil, imaging.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
}

func TestAnnotateInvalidInput(t *testing.T) {
	_, err := Annotate(nil, nil, imaging.DefaultStyle())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnnotateKeepsPixelModel(t *testing.T) {
	rec := ShapeRecord{
		Label:    detection.ShapeSquare,
		Boundary: squareBoundary(10, 20, 20),
		Bounds:   detection.Bounds{X1: 10, Y1: 20, X2: 30, Y2: 40},
		Anchor:   detection.Point{X: 10, Y: 20},
	}
	style := imaging.DefaultStyle()

	gray := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}
	out, err := Annotate(gray, []ShapeRecord{rec}, style)
	require.NoError(t, err)
	g, ok := out.(*image.Gray)
	require.True(t, ok, "got %T", out)
	assert.Less(t, g.GrayAt(20, 20).Y, uint8(255))
	assert.Equal(t, uint8(255), gray.GrayAt(20, 20).Y)

	out, err = Annotate(whiteCanvas(50, 50), []ShapeRecord{rec}, style)
	require.NoError(t, err)
	assert.IsType(t, &image.RGBA{}, out)

	ycc := image.NewYCbCr(image.Rect(0, 0, 50, 50), image.YCbCrSubsampleRatio420)
	out, err = Annotate(ycc, []ShapeRecord{rec}, style)
	require.NoError(t, err)
	assert.IsType(t, &image.NRGBA{}, out)
}
