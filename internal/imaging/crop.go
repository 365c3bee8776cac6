package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop returns the part of img inside r as a new origin-zero image. r is in
// img's coordinate space and must lie inside img's bounds with positive
// width and height.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	if err := CheckSize(img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty region %v", ErrInvalidInput, r)
	}
	if !r.In(b) {
		return nil, fmt.Errorf("%w: region %v outside image bounds %v", ErrInvalidInput, r, b)
	}
	return imaging.Crop(img, r), nil
}

// NamedRegion resolves a region name relative to bounds.
//
// Recognized names: "full", "top-left", "top-right", "bottom-left",
// "bottom-right", "top-half", "bottom-half", "left-half", "right-half" and
// "center" (the middle 50% in each direction).
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var r image.Rectangle
	switch name {
	case "", "full":
		r = image.Rect(0, 0, w, h)
	case "top-left":
		r = image.Rect(0, 0, midX, midY)
	case "top-right":
		r = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		r = image.Rect(0, midY, midX, h)
	case "bottom-right":
		r = image.Rect(midX, midY, w, h)
	case "top-half":
		r = image.Rect(0, 0, w, midY)
	case "bottom-half":
		r = image.Rect(0, midY, w, h)
	case "left-half":
		r = image.Rect(0, 0, midX, h)
	case "right-half":
		r = image.Rect(midX, 0, w, h)
	case "center":
		r = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}
	return r.Add(bounds.Min), nil
}
