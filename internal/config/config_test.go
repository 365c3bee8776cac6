package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.BlurKernelSize)
	assert.Equal(t, imaging.MethodGradient, cfg.BoundaryMethod)
	assert.Equal(t, detection.AreaRelative, cfg.MinAreaPolicy)
	assert.Equal(t, 0.001, cfg.MinAreaValue)
	assert.Equal(t, 0.015, cfg.EpsilonFraction)
	assert.Equal(t, 0.80, cfg.CircularityThreshold)
	assert.Equal(t, 1.10, cfg.SquareTolerance)
	assert.False(t, cfg.CircularityFirst)
	assert.Equal(t, detection.RectMinArea, cfg.RectFit)
	assert.Equal(t, BackendNative, cfg.Backend)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.BlurKernelSize = 4
	cfg.EpsilonFraction = 0.2
	cfg.CircularityThreshold = 0.5
	cfg.SquareTolerance = 1.5
	cfg.LowThreshold, cfg.HighThreshold = 120, 40

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, key := range []string{"blur_kernel_size", "simplification_epsilon_fraction", "circularity_threshold", "square_aspect_tolerance", "low_threshold"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"even blur", func(c *Config) { c.BlurKernelSize = 6 }},
		{"small blur", func(c *Config) { c.BlurKernelSize = 1 }},
		{"unknown method", func(c *Config) { c.BoundaryMethod = "sobel" }},
		{"high threshold", func(c *Config) { c.HighThreshold = 300 }},
		{"intensity", func(c *Config) { c.IntensityThreshold = -1 }},
		{"morph kernel", func(c *Config) { c.MorphKernelSize = 9 }},
		{"relative area", func(c *Config) { c.MinAreaValue = 1.5 }},
		{"absolute area", func(c *Config) { c.MinAreaPolicy = detection.AreaAbsolute; c.MinAreaValue = -3 }},
		{"area policy", func(c *Config) { c.MinAreaPolicy = "largest" }},
		{"epsilon low", func(c *Config) { c.EpsilonFraction = 0.001 }},
		{"circularity high", func(c *Config) { c.CircularityThreshold = 0.9 }},
		{"square tolerance low", func(c *Config) { c.SquareTolerance = 0.9 }},
		{"rect fit", func(c *Config) { c.RectFit = "hull" }},
		{"backend", func(c *Config) { c.Backend = "cuda" }},
		{"text engine", func(c *Config) { c.TextEngine = "magic" }},
		{"stroke width", func(c *Config) { c.Annotation.StrokeWidth = 0 }},
		{"stroke color", func(c *Config) { c.Annotation.StrokeColor = "green" }},
		{"workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateRangeEndsInclusive(t *testing.T) {
	cfg := Default()
	cfg.EpsilonFraction = 0.05
	cfg.CircularityThreshold = 0.85
	cfg.SquareTolerance = 1.2
	cfg.MorphKernelSize = 7
	cfg.MinAreaPolicy = detection.AreaAbsolute
	cfg.MinAreaValue = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
blur_kernel_size: 7
boundary_method: threshold
circularity_first: true
min_area_policy: absolute_floor
min_area_value: 250
annotation:
  stroke_color: "#FF0000"
`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, 7, cfg.BlurKernelSize)
	assert.Equal(t, imaging.MethodThreshold, cfg.BoundaryMethod)
	assert.True(t, cfg.CircularityFirst)
	assert.Equal(t, detection.MinArea{Policy: detection.AreaAbsolute, Value: 250}, cfg.MinArea())
	assert.Equal(t, "#FF0000", cfg.Annotation.StrokeColor)

	// Untouched keys keep their defaults.
	assert.Equal(t, "#0000FF", cfg.Annotation.LabelColor)
	assert.Equal(t, 0.015, cfg.EpsilonFraction)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, Default().LoadFile(filepath.Join(dir, "missing.yaml")))

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("blur_radius: 3\n"), 0o644))
	assert.Error(t, Default().LoadFile(unknown))
}

func TestLoadUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("low_threshold: 30\nhigh_threshold: 90\n"), 0o644))

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigFile, path)
	t.Setenv("SHAPE_MCP_HIGH_THRESHOLD", "100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.LowThreshold)
	assert.Equal(t, 100, cfg.HighThreshold)
}

func TestConversions(t *testing.T) {
	cfg := Default()

	pre := cfg.PreprocessOptions()
	assert.Equal(t, imaging.DefaultPreprocessOptions(), pre)
	assert.Equal(t, detection.DefaultClassifierOptions(), cfg.ClassifierOptions())

	style, err := cfg.Style()
	require.NoError(t, err)
	assert.Equal(t, 2, style.StrokeWidth)
	assert.Equal(t, 8, style.LabelOffset)

	cfg.Annotation.LabelColor = "nope"
	_, err = cfg.Style()
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.BlurKernelSize = 9
	cp.Annotation.StrokeWidth = 5
	assert.Equal(t, 5, cfg.BlurKernelSize)
	assert.Equal(t, 2, cfg.Annotation.StrokeWidth)
}
