package analysis

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// labelAscent keeps a label from being drawn above the top edge: it is the
// cap height of the 7x13 face.
const labelAscent = 11

// Annotate draws every record onto a copy of img and returns the copy; img
// itself is never modified. Each record's boundary is outlined with the
// stroke style and its label is written above the top-left corner of its
// bounding box, pushed down when that would leave the image.
//
// Record coordinates are relative to img's top-left corner. The result has
// img's size with its origin at (0, 0). *image.Gray and *image.RGBA inputs
// come back in the same model; anything else becomes *image.NRGBA.
//
// Returns ErrInvalidInput for a nil or zero-area image.
func Annotate(img image.Image, records []ShapeRecord, style imgutil.Style) (image.Image, error) {
	if err := imgutil.CheckSize(img); err != nil {
		return nil, err
	}
	out := imaging.Clone(img)

	// Outlines first so no label is painted over by a later shape's stroke.
	for _, rec := range records {
		imgutil.DrawPolyline(out, rec.Boundary.ImagePoints(), true, style.StrokeWidth, style.StrokeColor)
	}
	for _, rec := range records {
		x := rec.Anchor.X
		y := rec.Anchor.Y - style.LabelOffset
		if y < labelAscent {
			y = labelAscent
		}
		imgutil.DrawLabel(out, x, y, rec.Label.String(), style.LabelColor)
	}
	return sameModel(img, out), nil
}

// sameModel converts the drawn copy back to the pixel model of src.
func sameModel(src image.Image, out *image.NRGBA) image.Image {
	switch src.(type) {
	case *image.Gray:
		return imgutil.Grayscale(out)
	case *image.RGBA:
		rgba := image.NewRGBA(out.Bounds())
		draw.Draw(rgba, rgba.Bounds(), out, image.Point{}, draw.Src)
		return rgba
	}
	return out
}
