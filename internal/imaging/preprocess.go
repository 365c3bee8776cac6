package imaging

import (
	"fmt"
	"image"
)

// BoundaryMethod selects how the binary mask is extracted from the smoothed
// intensity image.
type BoundaryMethod string

const (
	// MethodGradient uses the Canny detector with low/high thresholds.
	MethodGradient BoundaryMethod = "gradient"

	// MethodThreshold uses a fixed intensity threshold, inverted so that
	// pixels darker than the threshold are foreground.
	MethodThreshold BoundaryMethod = "threshold"
)

// PreprocessOptions configures Preprocess.
type PreprocessOptions struct {
	// BlurKernelSize is the Gaussian kernel width (odd, >= 3).
	BlurKernelSize int `json:"blur_kernel_size"`

	// Method picks gradient (Canny) or threshold extraction.
	Method BoundaryMethod `json:"boundary_method"`

	// LowThreshold and HighThreshold apply to MethodGradient.
	LowThreshold  int `json:"low_threshold"`
	HighThreshold int `json:"high_threshold"`

	// IntensityThreshold applies to MethodThreshold (0-255).
	IntensityThreshold int `json:"intensity_threshold"`

	// MorphKernelSize is the square structuring element used for the
	// dilation and closing passes (odd, >= 3).
	MorphKernelSize int `json:"morph_kernel_size"`
}

// DefaultPreprocessOptions returns a 5×5 blur, Canny 40/120 and a 3×3
// structuring element.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		BlurKernelSize:     5,
		Method:             MethodGradient,
		LowThreshold:       40,
		HighThreshold:      120,
		IntensityThreshold: 127,
		MorphKernelSize:    3,
	}
}

// Preprocess turns a raster image into a clean binary mask ready for contour
// tracing.
//
// # Pipeline
//
//  1. Grayscale: color images are reduced to BT.601 luminance; gray images
//     pass through unchanged
//  2. Smoothing: Gaussian blur with opts.BlurKernelSize
//  3. Extraction: Canny (MethodGradient) or inverted threshold (MethodThreshold)
//  4. Reinforcement: one dilation and one closing with opts.MorphKernelSize
//
// The returned mask always has the dimensions of img. The caller's image is
// never modified.
//
// Returns ErrInvalidInput if img is nil or has zero area.
func Preprocess(img image.Image, opts PreprocessOptions) (*Mask, error) {
	if err := CheckSize(img); err != nil {
		return nil, err
	}

	gray := Grayscale(img)
	smoothed := Blur(gray, opts.BlurKernelSize)

	var mask *Mask
	switch opts.Method {
	case MethodThreshold:
		mask = ThresholdInv(smoothed, uint8(clamp(opts.IntensityThreshold, 0, 255)))
	case MethodGradient, "":
		mask = Canny(smoothed, float64(opts.LowThreshold), float64(opts.HighThreshold))
	default:
		return nil, fmt.Errorf("unknown boundary method %q", opts.Method)
	}

	mask = Dilate(mask, opts.MorphKernelSize)
	mask = Close(mask, opts.MorphKernelSize)
	return mask, nil
}
