package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style controls how detected shapes are drawn onto the annotated image.
type Style struct {
	// StrokeWidth is the outline thickness in pixels.
	StrokeWidth int

	// StrokeColor is the outline color.
	StrokeColor color.Color

	// LabelColor is the text color of the shape label.
	LabelColor color.Color

	// LabelOffset moves the label baseline this many pixels above its anchor.
	LabelOffset int
}

// DefaultStyle draws 2px green outlines with blue labels 8px above the
// shape's bounding box.
func DefaultStyle() Style {
	return Style{
		StrokeWidth: 2,
		StrokeColor: color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		LabelColor:  color.NRGBA{R: 0, G: 0, B: 255, A: 255},
		LabelOffset: 8,
	}
}

// ParseColor parses "#RRGGBB", "RRGGBB" or the short "#RGB" form.
func ParseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawPolyline strokes the segments joining pts with a square brush of the
// given width. When closed is true the last point is joined back to the
// first. Pixels outside dst are clipped.
func DrawPolyline(dst draw.Image, pts []image.Point, closed bool, width int, c color.Color) {
	if len(pts) == 0 {
		return
	}
	if width < 1 {
		width = 1
	}
	if len(pts) == 1 {
		stamp(dst, pts[0].X, pts[0].Y, width, c)
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		drawLine(dst, pts[i], pts[i+1], width, c)
	}
	if closed {
		drawLine(dst, pts[len(pts)-1], pts[0], width, c)
	}
}

// drawLine rasterizes a segment with Bresenham's algorithm, stamping the
// brush at every step.
func drawLine(dst draw.Image, a, b image.Point, width int, c color.Color) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(dst, x, y, width, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// stamp paints a width×width square roughly centered on (x, y).
func stamp(dst draw.Image, x, y, width int, c color.Color) {
	bounds := dst.Bounds()
	lo := -(width - 1) / 2
	for dy := lo; dy < lo+width; dy++ {
		for dx := lo; dx < lo+width; dx++ {
			p := image.Pt(x+dx, y+dy)
			if p.In(bounds) {
				dst.Set(p.X, p.Y, c)
			}
		}
	}
}

// DrawLabel writes text with its baseline starting at (x, y) using the
// fixed 7x13 bitmap face.
func DrawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
