// Package config holds the analysis options and the application settings
// around them.
//
// Values are layered, later sources winning:
//
//  1. Default()
//  2. A YAML file (the --config flag or SHAPE_MCP_CONFIG)
//  3. <UserConfigDir>/shape-tools-mcp/config.env, loaded into the
//     environment without overriding variables that are already set
//  4. SHAPE_MCP_* environment variables
//  5. Command-line flags, applied by the caller
//
// Validate must be called after the last layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

const (
	AppName     = "shape-tools-mcp"
	EnvFileName = "config.env"

	// EnvPrefix starts every environment override.
	EnvPrefix = "SHAPE_MCP_"

	// EnvConfigFile names the YAML file to load when no flag is given.
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Backend names.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Text suppression engines.
const (
	TextHeuristic = "heuristic"
	TextOCR       = "ocr"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full option set. The YAML keys match the option names used
// in MCP tool arguments and SHAPE_MCP_* variables (upper-cased).
type Config struct {
	// Preprocessing.
	BlurKernelSize     int                    `yaml:"blur_kernel_size" json:"blur_kernel_size"`
	BoundaryMethod     imaging.BoundaryMethod `yaml:"boundary_method" json:"boundary_method"`
	LowThreshold       int                    `yaml:"low_threshold" json:"low_threshold"`
	HighThreshold      int                    `yaml:"high_threshold" json:"high_threshold"`
	IntensityThreshold int                    `yaml:"intensity_threshold" json:"intensity_threshold"`
	MorphKernelSize    int                    `yaml:"morph_kernel_size" json:"morph_kernel_size"`

	// Contour extraction.
	MinAreaPolicy detection.AreaPolicy `yaml:"min_area_policy" json:"min_area_policy"`
	MinAreaValue  float64              `yaml:"min_area_value" json:"min_area_value"`

	// Simplification and classification.
	EpsilonFraction      float64           `yaml:"simplification_epsilon_fraction" json:"simplification_epsilon_fraction"`
	CircularityThreshold float64           `yaml:"circularity_threshold" json:"circularity_threshold"`
	SquareTolerance      float64           `yaml:"square_aspect_tolerance" json:"square_aspect_tolerance"`
	CircularityFirst     bool              `yaml:"circularity_first" json:"circularity_first"`
	RectFit              detection.RectFit `yaml:"rect_fit" json:"rect_fit"`

	// Backend selects the preprocessing and tracing implementation.
	Backend string `yaml:"backend" json:"backend"`

	// SuppressText clears text-like areas from the mask before tracing.
	SuppressText bool   `yaml:"suppress_text" json:"suppress_text"`
	TextEngine   string `yaml:"text_engine" json:"text_engine"`

	Annotation Annotation `yaml:"annotation" json:"annotation"`

	// Workers bounds batch concurrency; 0 means one per CPU.
	Workers int `yaml:"workers" json:"workers"`

	// Database is the SQLite file batch runs are recorded in. Empty
	// disables recording.
	Database string `yaml:"database" json:"database,omitempty"`
}

// Annotation is the drawing style of the annotated image.
type Annotation struct {
	StrokeWidth int    `yaml:"stroke_width" json:"stroke_width"`
	StrokeColor string `yaml:"stroke_color" json:"stroke_color"`
	LabelColor  string `yaml:"label_color" json:"label_color"`
	LabelOffset int    `yaml:"label_offset" json:"label_offset"`
}

// Default returns the default configuration.
func Default() *Config {
	pre := imaging.DefaultPreprocessOptions()
	cls := detection.DefaultClassifierOptions()
	return &Config{
		BlurKernelSize:       pre.BlurKernelSize,
		BoundaryMethod:       pre.Method,
		LowThreshold:         pre.LowThreshold,
		HighThreshold:        pre.HighThreshold,
		IntensityThreshold:   pre.IntensityThreshold,
		MorphKernelSize:      pre.MorphKernelSize,
		MinAreaPolicy:        detection.AreaRelative,
		MinAreaValue:         0.001,
		EpsilonFraction:      0.015,
		CircularityThreshold: cls.CircularityThreshold,
		SquareTolerance:      cls.SquareTolerance,
		CircularityFirst:     cls.CircularityFirst,
		RectFit:              cls.RectFit,
		Backend:              BackendNative,
		SuppressText:         false,
		TextEngine:           TextHeuristic,
		Annotation: Annotation{
			StrokeWidth: 2,
			StrokeColor: "#00FF00",
			LabelColor:  "#0000FF",
			LabelOffset: 8,
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (or the
// one named by SHAPE_MCP_CONFIG when path is empty), the user env file and
// the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	LoadEnvFile()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// EnvFilePath returns the location of the user env file, or "" when the
// user config directory is unknown.
func EnvFilePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, AppName, EnvFileName)
}

// LoadEnvFile loads the user env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile() {
	if p := EnvFilePath(); p != "" {
		_ = godotenv.Load(p)
	}
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// PreprocessOptions returns the mask pipeline settings.
func (c *Config) PreprocessOptions() imaging.PreprocessOptions {
	return imaging.PreprocessOptions{
		BlurKernelSize:     c.BlurKernelSize,
		Method:             c.BoundaryMethod,
		LowThreshold:       c.LowThreshold,
		HighThreshold:      c.HighThreshold,
		IntensityThreshold: c.IntensityThreshold,
		MorphKernelSize:    c.MorphKernelSize,
	}
}

// MinArea returns the contour size filter.
func (c *Config) MinArea() detection.MinArea {
	return detection.MinArea{Policy: c.MinAreaPolicy, Value: c.MinAreaValue}
}

// ClassifierOptions returns the decision procedure settings.
func (c *Config) ClassifierOptions() detection.ClassifierOptions {
	return detection.ClassifierOptions{
		CircularityThreshold: c.CircularityThreshold,
		SquareTolerance:      c.SquareTolerance,
		CircularityFirst:     c.CircularityFirst,
		RectFit:              c.RectFit,
	}
}

// Style converts the annotation settings into a drawing style.
func (c *Config) Style() (imaging.Style, error) {
	stroke, err := imaging.ParseColor(c.Annotation.StrokeColor)
	if err != nil {
		return imaging.Style{}, fmt.Errorf("stroke_color: %w", err)
	}
	label, err := imaging.ParseColor(c.Annotation.LabelColor)
	if err != nil {
		return imaging.Style{}, fmt.Errorf("label_color: %w", err)
	}
	return imaging.Style{
		StrokeWidth: c.Annotation.StrokeWidth,
		StrokeColor: stroke,
		LabelColor:  label,
		LabelOffset: c.Annotation.LabelOffset,
	}, nil
}

// Validate checks every option against its allowed range and reports all
// violations at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.BlurKernelSize < 3 || c.BlurKernelSize%2 == 0 {
		add("blur_kernel_size must be an odd integer >= 3, got %d", c.BlurKernelSize)
	}
	switch c.BoundaryMethod {
	case imaging.MethodGradient, imaging.MethodThreshold:
	default:
		add("boundary_method must be %q or %q, got %q", imaging.MethodGradient, imaging.MethodThreshold, c.BoundaryMethod)
	}
	if c.LowThreshold < 0 || c.HighThreshold > 255 || c.LowThreshold >= c.HighThreshold {
		add("low_threshold and high_threshold must satisfy 0 <= low < high <= 255, got %d/%d", c.LowThreshold, c.HighThreshold)
	}
	if c.IntensityThreshold < 0 || c.IntensityThreshold > 255 {
		add("intensity_threshold must be in [0, 255], got %d", c.IntensityThreshold)
	}
	if c.MorphKernelSize < 3 || c.MorphKernelSize > 7 || c.MorphKernelSize%2 == 0 {
		add("morph_kernel_size must be 3, 5 or 7, got %d", c.MorphKernelSize)
	}

	switch c.MinAreaPolicy {
	case detection.AreaRelative:
		if c.MinAreaValue <= 0 || c.MinAreaValue >= 1 {
			add("min_area_value must be in (0, 1) for %s, got %g", c.MinAreaPolicy, c.MinAreaValue)
		}
	case detection.AreaAbsolute:
		if c.MinAreaValue < 0 {
			add("min_area_value must be >= 0 for %s, got %g", c.MinAreaPolicy, c.MinAreaValue)
		}
	default:
		add("min_area_policy must be %q or %q, got %q", detection.AreaRelative, detection.AreaAbsolute, c.MinAreaPolicy)
	}

	if c.EpsilonFraction < 0.01 || c.EpsilonFraction > 0.05 {
		add("simplification_epsilon_fraction must be in [0.01, 0.05], got %g", c.EpsilonFraction)
	}
	if c.CircularityThreshold < 0.75 || c.CircularityThreshold > 0.85 {
		add("circularity_threshold must be in [0.75, 0.85], got %g", c.CircularityThreshold)
	}
	if c.SquareTolerance < 1.0 || c.SquareTolerance > 1.2 {
		add("square_aspect_tolerance must be in [1.0, 1.2], got %g", c.SquareTolerance)
	}
	switch c.RectFit {
	case detection.RectMinArea, detection.RectAxisAligned:
	default:
		add("rect_fit must be %q or %q, got %q", detection.RectMinArea, detection.RectAxisAligned, c.RectFit)
	}

	switch c.Backend {
	case BackendNative, BackendOpenCV:
	default:
		add("backend must be %q or %q, got %q", BackendNative, BackendOpenCV, c.Backend)
	}
	switch c.TextEngine {
	case TextHeuristic, TextOCR:
	default:
		add("text_engine must be %q or %q, got %q", TextHeuristic, TextOCR, c.TextEngine)
	}

	if c.Annotation.StrokeWidth < 1 {
		add("annotation.stroke_width must be >= 1, got %d", c.Annotation.StrokeWidth)
	}
	if c.Annotation.LabelOffset < 0 {
		add("annotation.label_offset must be >= 0, got %d", c.Annotation.LabelOffset)
	}
	if _, err := imaging.ParseColor(c.Annotation.StrokeColor); err != nil {
		add("annotation.stroke_color: %v", err)
	}
	if _, err := imaging.ParseColor(c.Annotation.LabelColor); err != nil {
		add("annotation.label_color: %v", err)
	}
	if c.Workers < 0 {
		add("workers must be >= 0, got %d", c.Workers)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
