package analysis

import (
	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

var (
	// ErrInvalidInput is returned for a nil or zero-area image.
	ErrInvalidInput = imaging.ErrInvalidInput

	// ErrDegenerateShape marks a boundary that was skipped. Analyze never
	// returns it.
	ErrDegenerateShape = detection.ErrDegenerateShape
)
