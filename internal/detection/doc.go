// Package detection turns binary masks into classified shapes.
//
// It works purely on geometry: the raster side (decoding, smoothing, edge
// extraction, morphology) lives in package imaging.
//
// # Pipeline
//
//  1. Extract traces the outer boundary of every connected foreground region
//     and drops those below the minimum area
//  2. Simplify reduces each boundary to a polygon with Douglas–Peucker,
//     using a tolerance proportional to the boundary's perimeter
//  3. Classifier.Classify maps the boundary and its polygon to a Shape label
//     using vertex count, aspect ratio and circularity
//
// Boundaries that collapse during simplification or classification are
// reported with ErrDegenerateShape; callers skip them and carry on.
//
// # Measurements
//
// Area uses the shoelace formula and Perimeter the sum of edge lengths of
// the closed outline. Circularity is 4πA/P², which is 1 for a disc and π/4
// for a square. Measurements are always taken on the traced boundary, never
// on the simplified polygon.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounds use inclusive corners on both ends
//
// Traced boundaries run clockwise on screen starting at the region's
// topmost-leftmost pixel.
//
// # Limitations
//
// Only outermost regions are reported: shapes drawn inside another shape's
// interior are ignored, as are holes. Overlapping or touching shapes merge
// into one region and are classified as a whole.
package detection
