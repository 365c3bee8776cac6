package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// TextRegion is an area of an edge mask that looks like a line of text.
type TextRegion struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
}

// textWindows are the sliding window sizes tried, roughly matching one line
// of small to large printed text.
var textWindows = []struct{ w, h int }{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

// FindTextRegions scans an edge mask for areas that look like printed text:
// a medium edge density with mostly horizontal structure. Overlapping hits
// are merged and the result is sorted by confidence, highest first.
//
// This is a heuristic. It is used to blank out captions before contour
// tracing when no OCR engine is available.
func FindTextRegions(edges *imaging.Mask, minConfidence float64) []TextRegion {
	if edges == nil {
		return nil
	}
	candidates := make([]TextRegion, 0)

	for _, ws := range textWindows {
		if ws.w > edges.Width || ws.h > edges.Height {
			continue
		}
		stepX, stepY := ws.w/2, ws.h/2

		for y := 0; y+ws.h <= edges.Height; y += stepY {
			for x := 0; x+ws.w <= edges.Width; x += stepX {
				count := 0
				for wy := y; wy < y+ws.h; wy++ {
					for wx := x; wx < x+ws.w; wx++ {
						if edges.Pix[wy*edges.Width+wx] {
							count++
						}
					}
				}

				density := float64(count) / float64(ws.w*ws.h)
				if density < 0.05 || density > 0.4 {
					continue
				}

				conf := horizontalScore(edges, x, y, ws.w, ws.h) * (1 - math.Abs(density-0.2)/0.2)
				if conf < minConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Bounds:     Bounds{X1: x, Y1: y, X2: x + ws.w - 1, Y2: y + ws.h - 1},
					Confidence: math.Round(conf*1000) / 1000,
				})
			}
		}
	}

	merged := mergeTextRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// horizontalScore is the share of edge runs in the window that are
// horizontal. Text rows produce many short horizontal runs.
func horizontalScore(edges *imaging.Mask, x, y, w, h int) float64 {
	var horizontal, vertical int

	for row := y; row < y+h; row++ {
		in := false
		for col := x; col < x+w; col++ {
			on := edges.Pix[row*edges.Width+col]
			if on && !in {
				horizontal++
			}
			in = on
		}
	}
	for col := x; col < x+w; col++ {
		in := false
		for row := y; row < y+h; row++ {
			on := edges.Pix[row*edges.Width+col]
			if on && !in {
				vertical++
			}
			in = on
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

func mergeTextRegions(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		joined := false
		for i := range merged {
			if boundsOverlap(r.Bounds, merged[i].Bounds) {
				merged[i].Bounds = boundsUnion(r.Bounds, merged[i].Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				joined = true
				break
			}
		}
		if !joined {
			merged = append(merged, r)
		}
	}
	return merged
}

func boundsOverlap(a, b Bounds) bool {
	return a.X1 <= b.X2 && a.X2 >= b.X1 && a.Y1 <= b.Y2 && a.Y2 >= b.Y1
}

func boundsUnion(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}
