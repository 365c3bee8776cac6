//go:build gocv

package opencv

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// Backend runs preprocessing and contour retrieval through OpenCV. It holds
// no state and is safe for concurrent use.
type Backend struct{}

// New returns an OpenCV backend.
func New() (*Backend, error) {
	return &Backend{}, nil
}

// Name returns "opencv".
func (b *Backend) Name() string { return Name }

// Preprocess produces the binary foreground mask for img using the same
// steps and parameters as imaging.Preprocess.
func (b *Backend) Preprocess(img image.Image, opts imaging.PreprocessOptions) (*imaging.Mask, error) {
	if err := imaging.CheckSize(img); err != nil {
		return nil, err
	}

	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, packGray(gray))
	if err != nil {
		return nil, fmt.Errorf("failed to create mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := oddSize(opts.BlurKernelSize)
	gocv.GaussianBlur(src, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	switch opts.Method {
	case imaging.MethodThreshold:
		gocv.Threshold(blurred, &binary, float32(opts.IntensityThreshold), 255, gocv.ThresholdBinaryInv)
	case imaging.MethodGradient, "":
		gocv.Canny(blurred, &binary, float32(opts.LowThreshold), float32(opts.HighThreshold))
	default:
		return nil, fmt.Errorf("unknown boundary method %q", opts.Method)
	}

	m := oddSize(opts.MorphKernelSize)
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: m, Y: m})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(binary, &dilated, kernel)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(dilated, &closed, gocv.MorphClose, kernel)

	return matToMask(closed, w, h)
}

// Trace retrieves the outer contour of every outermost foreground region.
// Contours are reordered to the native discovery order (raster order of the
// topmost-leftmost point) and outlines with fewer than three points are
// dropped.
func (b *Backend) Trace(mask *imaging.Mask) ([]detection.Boundary, error) {
	if mask == nil || mask.Width <= 0 || mask.Height <= 0 {
		return nil, fmt.Errorf("%w: empty mask", imaging.ErrInvalidInput)
	}

	mat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8UC1, mask.Gray().Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create mat: %w", err)
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	boundaries := make([]detection.Boundary, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pts := contours.At(i).ToPoints()
		if len(pts) < 3 {
			continue
		}
		b := make(detection.Boundary, len(pts))
		for j, p := range pts {
			b[j] = detection.Point{X: p.X, Y: p.Y}
		}
		boundaries = append(boundaries, b)
	}

	sort.SliceStable(boundaries, func(i, j int) bool {
		a, c := topLeft(boundaries[i]), topLeft(boundaries[j])
		if a.Y != c.Y {
			return a.Y < c.Y
		}
		return a.X < c.X
	})
	return boundaries, nil
}

func topLeft(b detection.Boundary) detection.Point {
	best := b[0]
	for _, p := range b[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

// packGray returns the pixels of g without row padding.
func packGray(g *image.Gray) []byte {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if g.Stride == w {
		return g.Pix[:w*h]
	}
	out := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		out = append(out, g.Pix[y*g.Stride:y*g.Stride+w]...)
	}
	return out
}

func matToMask(mat gocv.Mat, w, h int) (*imaging.Mask, error) {
	data := mat.ToBytes()
	if len(data) < w*h {
		return nil, fmt.Errorf("unexpected mat size %d for %dx%d", len(data), w, h)
	}
	mask := imaging.NewMask(w, h)
	for i := range mask.Pix {
		mask.Pix[i] = data[i] != 0
	}
	return mask, nil
}

func oddSize(k int) int {
	if k < 3 {
		return 3
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}
