package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("ocr engine not available: rebuild with -tags ocr")

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// DefaultMinConfidence drops words Tesseract is less than 40% sure about.
// Shape outlines are sometimes read as letters with very low confidence.
const DefaultMinConfidence = 0.40

// Word is one recognized word and where it sits in the image.
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0.0 to 1.0
	Box        image.Rectangle `json:"box"`
}

// wordRegions keeps the boxes of non-empty words at or above minConfidence.
// The boxes are grown by pad pixels on every side and clipped to bounds.
func wordRegions(words []Word, minConfidence float64, pad int, bounds image.Rectangle) []image.Rectangle {
	regions := make([]image.Rectangle, 0, len(words))
	for _, w := range words {
		if w.Text == "" || w.Confidence < minConfidence {
			continue
		}
		r := w.Box.Inset(-pad).Intersect(bounds)
		if r.Empty() {
			continue
		}
		regions = append(regions, r)
	}
	return regions
}
