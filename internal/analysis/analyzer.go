package analysis

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/ironsheep/shape-tools-mcp/internal/config"
	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
	"github.com/ironsheep/shape-tools-mcp/internal/logging"
	"github.com/ironsheep/shape-tools-mcp/internal/ocr"
	"github.com/ironsheep/shape-tools-mcp/internal/opencv"
)

// Backend turns an image into a binary mask and traces the outer boundary
// of every region in it.
type Backend interface {
	Name() string
	Preprocess(img image.Image, opts imaging.PreprocessOptions) (*imaging.Mask, error)
	Trace(mask *imaging.Mask) ([]detection.Boundary, error)
}

// TextMasker finds areas of an image that hold text. Rectangles are in the
// image's coordinate space.
type TextMasker interface {
	TextRegions(img image.Image) ([]image.Rectangle, error)
}

type nativeBackend struct{}

func (nativeBackend) Name() string { return config.BackendNative }

func (nativeBackend) Preprocess(img image.Image, opts imaging.PreprocessOptions) (*imaging.Mask, error) {
	return imaging.Preprocess(img, opts)
}

func (nativeBackend) Trace(mask *imaging.Mask) ([]detection.Boundary, error) {
	if mask == nil || mask.Width <= 0 || mask.Height <= 0 {
		return nil, fmt.Errorf("%w: empty mask", ErrInvalidInput)
	}
	return detection.TraceExternal(mask), nil
}

// heuristicText finds text with the edge-density detector.
type heuristicText struct {
	low, high float64
}

// textMinConfidence is the score a window needs before it is cleared.
const textMinConfidence = 0.5

func (h heuristicText) TextRegions(img image.Image) ([]image.Rectangle, error) {
	if err := imaging.CheckSize(img); err != nil {
		return nil, err
	}
	edges := imaging.Canny(imaging.Blur(imaging.Grayscale(img), 3), h.low, h.high)
	found := detection.FindTextRegions(edges, textMinConfidence)

	origin := img.Bounds().Min
	rects := make([]image.Rectangle, len(found))
	for i, tr := range found {
		rects[i] = image.Rect(tr.Bounds.X1, tr.Bounds.Y1, tr.Bounds.X2+1, tr.Bounds.Y2+1).Add(origin)
	}
	return rects, nil
}

// Analyzer runs the detection pipeline with one fixed configuration.
type Analyzer struct {
	cfg        *config.Config
	pre        imaging.PreprocessOptions
	minArea    detection.MinArea
	classifier *detection.Classifier
	style      imaging.Style

	backend Backend
	text    TextMasker
	closers []func() error

	log zerolog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// WithBackend replaces the backend chosen by the configuration.
func WithBackend(b Backend) Option {
	return func(a *Analyzer) { a.backend = b }
}

// WithTextMasker replaces the text engine chosen by the configuration. It
// is only consulted when suppress_text is on.
func WithTextMasker(m TextMasker) Option {
	return func(a *Analyzer) { a.text = m }
}

// New validates cfg and builds an Analyzer from it. A nil cfg means
// config.Default(). The configuration is copied, so later changes to cfg
// have no effect.
//
// Returns opencv.ErrUnavailable or ocr.ErrUnavailable when the configuration
// asks for an engine this binary was built without.
func New(cfg *config.Config, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:        cfg.Clone(),
		pre:        cfg.PreprocessOptions(),
		minArea:    cfg.MinArea(),
		classifier: detection.NewClassifier(cfg.ClassifierOptions()),
		style:      style,
		log:        logging.Component("analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.backend == nil {
		switch cfg.Backend {
		case config.BackendOpenCV:
			b, err := opencv.New()
			if err != nil {
				return nil, err
			}
			a.backend = b
		default:
			a.backend = nativeBackend{}
		}
	}

	if cfg.SuppressText && a.text == nil {
		switch cfg.TextEngine {
		case config.TextOCR:
			m, err := ocr.NewMasker(ocr.DefaultLanguage)
			if err != nil {
				return nil, err
			}
			a.text = m
			a.closers = append(a.closers, m.Close)
		default:
			a.text = heuristicText{low: float64(cfg.LowThreshold), high: float64(cfg.HighThreshold)}
		}
	}
	return a, nil
}

// Config returns a copy of the configuration in use.
func (a *Analyzer) Config() *config.Config { return a.cfg.Clone() }

// Backend returns the name of the active backend.
func (a *Analyzer) Backend() string { return a.backend.Name() }

// Close releases engines opened by New.
func (a *Analyzer) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Analyze runs the full pipeline on img and returns the records in
// discovery order together with an annotated copy of img.
//
// Returns ErrInvalidInput for a nil or zero-area image. Degenerate or
// undersized boundaries are skipped and counted in Result.Skipped.
func (a *Analyzer) Analyze(img image.Image) (*Result, error) {
	res, err := a.detect(img)
	if err != nil {
		return nil, err
	}
	res.Annotated, err = Annotate(img, res.Records, a.style)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AnalyzeRegion searches only the part of img inside r (in img's coordinate
// space). Record coordinates are shifted back so they refer to the whole
// image, and the annotation is drawn on a copy of the whole image. The mask
// covers the region only.
func (a *Analyzer) AnalyzeRegion(img image.Image, r image.Rectangle) (*Result, error) {
	crop, err := imaging.Crop(img, r)
	if err != nil {
		return nil, err
	}
	res, err := a.detect(crop)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	d := r.Min.Sub(b.Min)
	for i := range res.Records {
		res.Records[i].shift(d)
	}
	res.Width, res.Height = b.Dx(), b.Dy()
	res.Region = &detection.Bounds{X1: d.X, Y1: d.Y, X2: d.X + r.Dx() - 1, Y2: d.Y + r.Dy() - 1}

	res.Annotated, err = Annotate(img, res.Records, a.style)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// detect runs everything but annotation.
func (a *Analyzer) detect(img image.Image) (*Result, error) {
	if err := imaging.CheckSize(img); err != nil {
		return nil, err
	}
	b := img.Bounds()

	mask, err := a.backend.Preprocess(img, a.pre)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	if a.cfg.SuppressText && a.text != nil {
		regions, err := a.text.TextRegions(img)
		if err != nil {
			return nil, fmt.Errorf("text suppression: %w", err)
		}
		for _, r := range regions {
			mask.ClearRect(r.Sub(b.Min))
		}
		a.log.Debug().Int("regions", len(regions)).Msg("cleared text regions")
	}

	boundaries, err := a.backend.Trace(mask)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	res := &Result{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Backend: a.backend.Name(),
		Records: make([]ShapeRecord, 0, len(boundaries)),
		Mask:    mask,
	}
	threshold := a.minArea.Threshold(b.Dx(), b.Dy())

	for i, boundary := range boundaries {
		area := detection.Area(boundary)
		if area < threshold {
			res.Skipped.BelowMinArea++
			continue
		}

		rec, err := a.record(boundary, area)
		if errors.Is(err, ErrDegenerateShape) {
			res.Skipped.Degenerate++
			a.log.Debug().Int("boundary", i).Err(err).Msg("skipped boundary")
			continue
		}
		if err != nil {
			return nil, err
		}
		rec.Index = len(res.Records) + 1
		res.Records = append(res.Records, rec)
	}

	a.log.Debug().
		Int("boundaries", len(boundaries)).
		Int("records", len(res.Records)).
		Int("below_min_area", res.Skipped.BelowMinArea).
		Int("degenerate", res.Skipped.Degenerate).
		Float64("min_area", threshold).
		Msg("analysis complete")
	return res, nil
}

func (a *Analyzer) record(b detection.Boundary, area float64) (ShapeRecord, error) {
	poly, err := detection.Simplify(b, a.cfg.EpsilonFraction)
	if err != nil {
		return ShapeRecord{}, err
	}
	cls, err := a.classifier.Classify(b, poly)
	if err != nil {
		return ShapeRecord{}, err
	}
	box := detection.BoundingBox(b)
	return ShapeRecord{
		Label:       cls.Shape,
		Area:        round(area, 2),
		Perimeter:   round(detection.Perimeter(b), 2),
		Circularity: round(cls.Circularity, 4),
		Vertices:    cls.Vertices,
		AspectRatio: round(cls.AspectRatio, 4),
		Bounds:      box,
		Anchor:      detection.Point{X: box.X1, Y: box.Y1},
		Boundary:    b,
		Polygon:     poly,
	}, nil
}
