// Package opencv is an alternative preprocessing and contour backend built on
// OpenCV through gocv.
//
// The backend mirrors the native pipeline step for step (grayscale, Gaussian
// blur, Canny or inverted threshold, dilation and closing, external contour
// retrieval) so the two produce comparable boundaries for the same image.
//
// OpenCV is a cgo dependency. The real implementation is only compiled with
// the gocv build tag:
//
//	go build -tags gocv ./cmd/shape-mcp
//
// Without the tag every constructor returns ErrUnavailable and callers fall
// back to the native backend.
package opencv
