package analysis

import (
	"encoding/csv"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// ShapeRecord describes one detected object.
type ShapeRecord struct {
	// Index is the 1-based position in discovery order.
	Index int             `json:"index"`
	Label detection.Shape `json:"label"`

	// Area (px²) and Perimeter (px) of the traced boundary, rounded to two
	// decimals.
	Area      float64 `json:"area"`
	Perimeter float64 `json:"perimeter"`

	Circularity float64 `json:"circularity"`
	Vertices    int     `json:"vertices"`

	// AspectRatio is the long/short side ratio of the fitted rectangle,
	// only set for four-vertex shapes.
	AspectRatio float64 `json:"aspect_ratio,omitempty"`

	Bounds detection.Bounds `json:"bounds"`

	// Anchor is where the label is placed: the top-left corner of Bounds.
	Anchor detection.Point `json:"anchor"`

	Boundary detection.Boundary `json:"-"`
	Polygon  detection.Polygon  `json:"polygon"`
}

// SkipCounts tallies the boundaries that did not become records.
type SkipCounts struct {
	BelowMinArea int `json:"below_min_area"`
	Degenerate   int `json:"degenerate"`
}

// Result is the outcome of analyzing one image.
type Result struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Region is the analyzed area when only part of the image was
	// searched.
	Region *detection.Bounds `json:"region,omitempty"`

	// Backend names the implementation that produced the mask.
	Backend string `json:"backend"`

	Records []ShapeRecord `json:"records"`
	Skipped SkipCounts    `json:"skipped"`

	// Annotated is a copy of the input with every record drawn on it.
	Annotated image.Image `json:"-"`

	// Mask is the binary mask the boundaries were traced from, after text
	// suppression.
	Mask *imaging.Mask `json:"-"`
}

// Count returns the number of detected objects.
func (r *Result) Count() int { return len(r.Records) }

// Labels returns how many records carry each label.
func (r *Result) Labels() map[detection.Shape]int {
	counts := make(map[detection.Shape]int)
	for _, rec := range r.Records {
		counts[rec.Label]++
	}
	return counts
}

// WriteTable prints the records as an aligned text table, preceded by the
// object count.
func (r *Result) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Detected Objects: %d\n", r.Count()); err != nil {
		return err
	}
	if r.Count() == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tSHAPE\tAREA\tPERIMETER\tCIRCULARITY\tVERTICES")
	for _, rec := range r.Records {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.3f\t%d\n",
			rec.Index, rec.Label, rec.Area, rec.Perimeter, rec.Circularity, rec.Vertices)
	}
	return tw.Flush()
}

// csvHeader is the first CSV row. The source column is filled by batch
// reports and left empty otherwise.
var csvHeader = []string{"source", "object", "shape", "area", "perimeter", "circularity", "vertices", "x1", "y1", "x2", "y2"}

// WriteCSV writes the records as CSV with a header row.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := r.writeCSVRows(cw, ""); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (r *Result) writeCSVRows(cw *csv.Writer, source string) error {
	for _, rec := range r.Records {
		row := []string{
			source,
			strconv.Itoa(rec.Index),
			rec.Label.String(),
			strconv.FormatFloat(rec.Area, 'f', 2, 64),
			strconv.FormatFloat(rec.Perimeter, 'f', 2, 64),
			strconv.FormatFloat(rec.Circularity, 'f', 4, 64),
			strconv.Itoa(rec.Vertices),
			strconv.Itoa(rec.Bounds.X1),
			strconv.Itoa(rec.Bounds.Y1),
			strconv.Itoa(rec.Bounds.X2),
			strconv.Itoa(rec.Bounds.Y2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// shift moves every coordinate of rec by d.
func (rec *ShapeRecord) shift(d image.Point) {
	rec.Bounds.X1 += d.X
	rec.Bounds.X2 += d.X
	rec.Bounds.Y1 += d.Y
	rec.Bounds.Y2 += d.Y
	rec.Anchor = detection.Point{X: rec.Anchor.X + d.X, Y: rec.Anchor.Y + d.Y}

	b := make(detection.Boundary, len(rec.Boundary))
	for i, p := range rec.Boundary {
		b[i] = detection.Point{X: p.X + d.X, Y: p.Y + d.Y}
	}
	rec.Boundary = b

	poly := make(detection.Polygon, len(rec.Polygon))
	for i, p := range rec.Polygon {
		poly[i] = detection.Point{X: p.X + d.X, Y: p.Y + d.Y}
	}
	rec.Polygon = poly
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
