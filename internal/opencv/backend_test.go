//go:build gocv

package opencv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

func darkSquare(size, x0, y0, side int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	return img
}

func TestPreprocessThreshold(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	opts := imaging.DefaultPreprocessOptions()
	opts.Method = imaging.MethodThreshold
	mask, err := b.Preprocess(darkSquare(100, 30, 30, 40), opts)
	require.NoError(t, err)

	assert.Equal(t, 100, mask.Width)
	assert.True(t, mask.At(50, 50))
	assert.False(t, mask.At(5, 5))
}

func TestTraceOrdersByDiscovery(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	mask := imaging.NewMask(60, 60)
	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				mask.Set(x, y, true)
			}
		}
	}
	fill(35, 5, 50, 20)
	fill(5, 30, 20, 45)

	boundaries, err := b.Trace(mask)
	require.NoError(t, err)
	require.Len(t, boundaries, 2)
	assert.Equal(t, 5, detection.BoundingBox(boundaries[0]).Y1)
	assert.Equal(t, 30, detection.BoundingBox(boundaries[1]).Y1)
}

func TestTraceRejectsEmptyMask(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	_, err = b.Trace(nil)
	assert.ErrorIs(t, err, imaging.ErrInvalidInput)
}
