package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// ErrInvalidInput is returned when an image is nil or has zero area.
var ErrInvalidInput = errors.New("invalid input image")

// CheckSize returns ErrInvalidInput if img is nil or has no pixels.
func CheckSize(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: image has zero area (%dx%d)", ErrInvalidInput, b.Dx(), b.Dy())
	}
	return nil
}

// Grayscale converts img to a single-channel intensity image whose bounds
// start at the origin.
//
// A *image.Gray input keeps its pixel values unchanged (only the origin is
// normalized). Every other image is reduced to luminance with the ITU-R
// BT.601 weights (0.299*R + 0.587*G + 0.114*B).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[srcOff:srcOff+w])
		}
		return out
	}

	// imaging.Grayscale returns an origin-zero NRGBA with R=G=B=luminance.
	gs := imaging.Grayscale(img)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = gs.Pix[y*gs.Stride+x*4]
		}
	}
	return out
}

// Blur smooths a grayscale image with a Gaussian kernel of kernelSize×kernelSize
// pixels. kernelSize is forced to an odd value of at least 3.
func Blur(gray *image.Gray, kernelSize int) *image.Gray {
	kernelSize = oddKernel(kernelSize)
	blurred := blur.Gaussian(gray, kernelRadius(kernelSize))
	return grayFromRGBA(blurred)
}

// grayFromRGBA keeps the red channel of an RGBA image produced by a filter
// that was fed a gray image (all three channels carry the same value).
func grayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = src.Pix[off+x*4]
		}
	}
	return out
}

// oddKernel returns the nearest valid kernel size: odd and at least 3.
func oddKernel(k int) int {
	if k < 3 {
		return 3
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}

// kernelRadius converts a kernel width to the radius bild filters expect.
// bild builds kernels of width 2*radius+1.
func kernelRadius(k int) float64 {
	return float64(k-1) / 2
}

// clamp constrains an integer value to the range [lo, hi].
// Used for boundary handling in convolution operations.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
