package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
)

func TestSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("blur_kernel_size", "7"))
	require.NoError(t, cfg.Set("circularity_first", "true"))
	require.NoError(t, cfg.Set("square_aspect_tolerance", " 1.15 "))
	require.NoError(t, cfg.Set("rect_fit", "axis_aligned"))
	require.NoError(t, cfg.Set("annotation.label_offset", "12"))

	assert.Equal(t, 7, cfg.BlurKernelSize)
	assert.True(t, cfg.CircularityFirst)
	assert.Equal(t, 1.15, cfg.SquareTolerance)
	assert.Equal(t, detection.RectAxisAligned, cfg.RectFit)
	assert.Equal(t, 12, cfg.Annotation.LabelOffset)

	assert.Error(t, cfg.Set("no_such_option", "1"))
	assert.Error(t, cfg.Set("blur_kernel_size", "five"))
	assert.Error(t, cfg.Set("circularity_first", "maybe"))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SHAPE_MCP_BLUR_KERNEL_SIZE", EnvName("blur_kernel_size"))
	assert.Equal(t, "SHAPE_MCP_ANNOTATION_STROKE_COLOR", EnvName("annotation.stroke_color"))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SHAPE_MCP_BOUNDARY_METHOD":         "threshold",
		"SHAPE_MCP_INTENSITY_THRESHOLD":     "100",
		"SHAPE_MCP_ANNOTATION_STROKE_WIDTH": "3",
		"SHAPE_MCP_WORKERS":                 "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "threshold", string(cfg.BoundaryMethod))
	assert.Equal(t, 100, cfg.IntensityThreshold)
	assert.Equal(t, 3, cfg.Annotation.StrokeWidth)
	assert.Equal(t, 0, cfg.Workers)

	env["SHAPE_MCP_LOW_THRESHOLD"] = "low"
	err := Default().ApplyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHAPE_MCP_LOW_THRESHOLD")
}

func TestKeysCoverYAMLTags(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "simplification_epsilon_fraction")
	assert.Contains(t, keys, "annotation.stroke_color")
	assert.IsIncreasing(t, keys)
}
