package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidRGBA returns a width×height image filled with c.
func solidRGBA(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// squareImage draws a filled dark square of the given side, top-left at
// (x, y), on a white background.
func squareImage(width, height, x, y, side int) *image.RGBA {
	img := solidRGBA(width, height, color.White)
	for py := y; py < y+side; py++ {
		for px := x; px < x+side; px++ {
			img.Set(px, py, color.Black)
		}
	}
	return img
}

func TestCheckSize(t *testing.T) {
	assert.ErrorIs(t, CheckSize(nil), ErrInvalidInput)
	assert.ErrorIs(t, CheckSize(image.NewRGBA(image.Rect(0, 0, 0, 10))), ErrInvalidInput)
	assert.ErrorIs(t, CheckSize(image.NewGray(image.Rect(5, 5, 5, 5))), ErrInvalidInput)
	assert.NoError(t, CheckSize(image.NewGray(image.Rect(0, 0, 1, 1))))
}

func TestGrayscaleLuminance(t *testing.T) {
	gray := Grayscale(solidRGBA(4, 4, color.RGBA{R: 255, A: 255}))
	assert.Equal(t, image.Rect(0, 0, 4, 4), gray.Bounds())
	assert.InDelta(t, 76, int(gray.GrayAt(2, 2).Y), 1)

	gray = Grayscale(solidRGBA(4, 4, color.RGBA{G: 255, A: 255}))
	assert.InDelta(t, 150, int(gray.GrayAt(0, 0).Y), 1)
}

func TestGrayscalePassesGrayThrough(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range src.Pix {
		src.Pix[i] = uint8(i % 251)
	}
	sub := src.SubImage(image.Rect(5, 5, 15, 15)).(*image.Gray)

	gray := Grayscale(sub)
	require.Equal(t, image.Rect(0, 0, 10, 10), gray.Bounds())
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, src.GrayAt(x+5, y+5), gray.GrayAt(x, y))
		}
	}

	// The result is a copy.
	gray.Pix[0] = 0
	assert.Equal(t, uint8((5*20+5)%251), src.Pix[5*20+5])
}

func TestBlurUniform(t *testing.T) {
	gray := Grayscale(solidRGBA(30, 30, color.Gray{Y: 128}))
	blurred := Blur(gray, 5)
	require.Equal(t, gray.Bounds(), blurred.Bounds())
	for _, v := range blurred.Pix {
		assert.InDelta(t, 128, int(v), 1)
	}
}

func TestBlurSpreadsSpot(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 21, 21))
	gray.SetGray(10, 10, color.Gray{Y: 255})

	blurred := Blur(gray, 5)
	assert.Less(t, blurred.GrayAt(10, 10).Y, uint8(255))
	assert.Greater(t, blurred.GrayAt(11, 10).Y, uint8(0))
	assert.Zero(t, blurred.GrayAt(0, 0).Y)
}

func TestOddKernel(t *testing.T) {
	assert.Equal(t, 3, oddKernel(0))
	assert.Equal(t, 3, oddKernel(3))
	assert.Equal(t, 5, oddKernel(4))
	assert.Equal(t, 7, oddKernel(7))
	assert.Equal(t, 2.0, kernelRadius(5))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-5, 0, 10))
	assert.Equal(t, 10, clamp(15, 0, 10))
	assert.Equal(t, 7, clamp(7, 0, 10))
}
