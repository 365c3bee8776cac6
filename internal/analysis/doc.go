// Package analysis runs the shape detection pipeline end to end and reports
// what it found.
//
// An Analyzer chains the stages of the imaging and detection packages:
//
//	image -> Preprocess -> mask -> [text suppression] -> Trace
//	      -> area filter -> Simplify -> Classify -> ShapeRecord
//
// and then draws every accepted outline and label onto a copy of the input
// (Annotate). Boundaries that are too small or that collapse during
// simplification are skipped and counted, never reported as errors. An image
// without any shape yields an empty Result.
//
// All coordinates in a Result are pixel positions relative to the top-left
// corner of the analyzed image, whatever its bounds origin.
//
// An Analyzer is immutable after New and may be shared between goroutines.
// Batch uses this to analyze many files in parallel; each image is still
// processed by a single goroutine from start to finish.
package analysis
