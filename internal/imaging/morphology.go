package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// ThresholdInv marks pixels darker than level as foreground. Dark shapes on a
// light background become foreground regions.
func ThresholdInv(gray *image.Gray, level uint8) *Mask {
	// segment.Threshold paints pixels >= level white, the rest black.
	bin := segment.Threshold(gray, level)
	b := bin.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		off := bin.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < m.Width; x++ {
			m.Pix[y*m.Width+x] = bin.Pix[off+x] == 0
		}
	}
	return m
}

// Dilate grows foreground regions with a square structuring element of
// kernelSize×kernelSize pixels.
func Dilate(m *Mask, kernelSize int) *Mask {
	r := kernelRadius(oddKernel(kernelSize))
	return MaskFromImage(effect.Dilate(m.Gray(), r))
}

// Erode shrinks foreground regions with a square structuring element.
func Erode(m *Mask, kernelSize int) *Mask {
	r := kernelRadius(oddKernel(kernelSize))
	return MaskFromImage(effect.Erode(m.Gray(), r))
}

// Close performs a morphological closing (dilation followed by erosion),
// bridging gaps narrower than the structuring element without growing
// regions overall.
func Close(m *Mask, kernelSize int) *Mask {
	r := kernelRadius(oddKernel(kernelSize))
	dilated := effect.Dilate(m.Gray(), r)
	return MaskFromImage(effect.Erode(dilated, r))
}
