// Package ocr finds words in an image with Tesseract so their outlines can be
// removed before shape detection.
//
// Only word locations are used. Recognized text is discarded: a caption next
// to a drawing would otherwise be traced as a cluster of small polygons.
//
// # Build Requirements
//
// Tesseract is reached through gosseract, which needs cgo and the Tesseract
// and Leptonica development headers:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The engine is only compiled with the ocr build tag. Without it NewMasker
// returns ErrUnavailable and the heuristic text detector is used instead.
package ocr
