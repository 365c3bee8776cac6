//go:build !gocv

package opencv

import (
	"image"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// Backend is a placeholder for builds without OpenCV.
type Backend struct{}

// New always fails with ErrUnavailable in this build.
func New() (*Backend, error) {
	return nil, ErrUnavailable
}

// Name returns "opencv".
func (b *Backend) Name() string { return Name }

// Preprocess always fails with ErrUnavailable in this build.
func (b *Backend) Preprocess(image.Image, imaging.PreprocessOptions) (*imaging.Mask, error) {
	return nil, ErrUnavailable
}

// Trace always fails with ErrUnavailable in this build.
func (b *Backend) Trace(*imaging.Mask) ([]detection.Boundary, error) {
	return nil, ErrUnavailable
}
