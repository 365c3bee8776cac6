package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// setter parses a string value into one field.
type setter func(c *Config, v string) error

func intField(get func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*get(c) = n
		return nil
	}
}

func floatField(get func(*Config) *float64) setter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*get(c) = f
		return nil
	}
}

func boolField(get func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*get(c) = b
		return nil
	}
}

func stringField(get func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*get(c) = strings.TrimSpace(v)
		return nil
	}
}

// setters maps option names (the YAML keys, dotted for nested ones) to
// their parsers.
var setters = map[string]setter{
	"blur_kernel_size": intField(func(c *Config) *int { return &c.BlurKernelSize }),
	"boundary_method": func(c *Config, v string) error {
		c.BoundaryMethod = imaging.BoundaryMethod(strings.TrimSpace(v))
		return nil
	},
	"low_threshold":       intField(func(c *Config) *int { return &c.LowThreshold }),
	"high_threshold":      intField(func(c *Config) *int { return &c.HighThreshold }),
	"intensity_threshold": intField(func(c *Config) *int { return &c.IntensityThreshold }),
	"morph_kernel_size":   intField(func(c *Config) *int { return &c.MorphKernelSize }),
	"min_area_policy": func(c *Config, v string) error {
		c.MinAreaPolicy = detection.AreaPolicy(strings.TrimSpace(v))
		return nil
	},
	"min_area_value":                  floatField(func(c *Config) *float64 { return &c.MinAreaValue }),
	"simplification_epsilon_fraction": floatField(func(c *Config) *float64 { return &c.EpsilonFraction }),
	"circularity_threshold":           floatField(func(c *Config) *float64 { return &c.CircularityThreshold }),
	"square_aspect_tolerance":         floatField(func(c *Config) *float64 { return &c.SquareTolerance }),
	"circularity_first":               boolField(func(c *Config) *bool { return &c.CircularityFirst }),
	"rect_fit": func(c *Config, v string) error {
		c.RectFit = detection.RectFit(strings.TrimSpace(v))
		return nil
	},
	"backend":                 stringField(func(c *Config) *string { return &c.Backend }),
	"suppress_text":           boolField(func(c *Config) *bool { return &c.SuppressText }),
	"text_engine":             stringField(func(c *Config) *string { return &c.TextEngine }),
	"annotation.stroke_width": intField(func(c *Config) *int { return &c.Annotation.StrokeWidth }),
	"annotation.stroke_color": stringField(func(c *Config) *string { return &c.Annotation.StrokeColor }),
	"annotation.label_color":  stringField(func(c *Config) *string { return &c.Annotation.LabelColor }),
	"annotation.label_offset": intField(func(c *Config) *int { return &c.Annotation.LabelOffset }),
	"workers":                 intField(func(c *Config) *int { return &c.Workers }),
	"database":                stringField(func(c *Config) *string { return &c.Database }),
}

// Keys returns every option name accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one option from its string form. name is the YAML key, with
// nested keys dotted ("annotation.stroke_width").
func (c *Config) Set(name, value string) error {
	fn, ok := setters[name]
	if !ok {
		return fmt.Errorf("unknown option %q", name)
	}
	if err := fn(c, value); err != nil {
		return fmt.Errorf("option %s: invalid value %q: %w", name, value, err)
	}
	return nil
}

// EnvName returns the environment variable that overrides an option:
// "annotation.stroke_width" becomes SHAPE_MCP_ANNOTATION_STROKE_WIDTH.
func EnvName(option string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(option, ".", "_"))
}

// ApplyEnv overrides options from SHAPE_MCP_* variables found through
// lookup (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, key := range Keys() {
		v, ok := lookup(EnvName(key))
		if !ok || v == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}
