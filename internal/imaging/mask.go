package imaging

import (
	"image"
	"image/color"
)

// Mask is a binary image with one value per pixel. True marks foreground.
//
// Pix is stored row-major with a stride equal to Width, so the value for
// pixel (x, y) lives at Pix[y*Width+x]. A Mask always has the dimensions of
// the image it was derived from, with its origin at (0, 0).
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set assigns the value at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// ClearRect sets every pixel inside r to background.
func (m *Mask) ClearRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = false
		}
	}
}

// Gray renders the mask as an 8-bit image: 255 for foreground, 0 otherwise.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			g.Pix[i] = 255
		}
	}
	return g
}

// MaskFromImage thresholds an image at mid-gray: pixels whose luminance is
// above 127 become foreground. It is the inverse of Mask.Gray and is used to
// read back the output of image-domain filters.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < m.Height; y++ {
			off := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X - src.Rect.Min.X)
			for x := 0; x < m.Width; x++ {
				m.Pix[y*m.Width+x] = src.Pix[off+x] > 127
			}
		}
	case *image.RGBA:
		for y := 0; y < m.Height; y++ {
			off := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
			for x := 0; x < m.Width; x++ {
				m.Pix[y*m.Width+x] = src.Pix[off+x*4] > 127
			}
		}
	default:
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				g := color.GrayModel.Convert(img.At(x+b.Min.X, y+b.Min.Y)).(color.Gray)
				m.Pix[y*m.Width+x] = g.Y > 127
			}
		}
	}
	return m
}
