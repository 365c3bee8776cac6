//go:build !ocr

package ocr

import "image"

// Masker is a placeholder for builds without Tesseract.
type Masker struct{}

// NewMasker always fails with ErrUnavailable in this build.
func NewMasker(string) (*Masker, error) {
	return nil, ErrUnavailable
}

// Words always fails with ErrUnavailable in this build.
func (m *Masker) Words(image.Image) ([]Word, error) {
	return nil, ErrUnavailable
}

// TextRegions always fails with ErrUnavailable in this build.
func (m *Masker) TextRegions(image.Image) ([]image.Rectangle, error) {
	return nil, ErrUnavailable
}

// Close does nothing.
func (m *Masker) Close() error { return nil }
