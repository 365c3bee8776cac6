// Package imaging provides the raster side of shape analysis: loading and
// caching decoded images, turning them into clean binary masks, and drawing
// annotations.
//
// # Preprocessing
//
// Preprocess runs the fixed mask pipeline:
//
//  1. Grayscale: BT.601 luminance (single-channel input passes through)
//  2. Gaussian blur (configurable odd kernel, typically 5 or 7)
//  3. Boundary extraction: Canny with low/high thresholds, or an inverted
//     intensity threshold so that dark shapes become foreground
//  4. One dilation and one closing with a small square structuring element
//     to bridge gaps before contour tracing
//
// Blur, threshold and morphology are delegated to bild; grayscale conversion
// and image cloning use disintegration/imaging.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. Every image produced by
// this package has its bounds starting at (0, 0), whatever the bounds of the
// input.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are pure:
// they never modify their inputs and may run concurrently on different or
// shared images.
package imaging
