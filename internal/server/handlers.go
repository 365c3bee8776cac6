package server

import (
	"encoding/json"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-tools-mcp/internal/analysis"
	"github.com/ironsheep/shape-tools-mcp/internal/config"
	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "shapes_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Shape Analysis
	case "shapes_analyze":
		return s.handleShapesAnalyze(args)
	case "shapes_mask":
		return s.handleShapesMask(args)
	case "shapes_config":
		return s.handleShapesConfig()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Shape Analysis Handlers ===

type shapesAnalyzeArgs struct {
	Path         string                 `json:"path"`
	Region       string                 `json:"region"`
	Options      map[string]interface{} `json:"options"`
	IncludeImage *bool                  `json:"include_image"`
}

// ShapesAnalyzeResult is the result of the shapes_analyze tool.
type ShapesAnalyzeResult struct {
	Path      string                  `json:"path"`
	Width     int                     `json:"width"`
	Height    int                     `json:"height"`
	Region    *detection.Bounds       `json:"region,omitempty"`
	Backend   string                  `json:"backend"`
	Count     int                     `json:"count"`
	Labels    map[detection.Shape]int `json:"labels"`
	Records   []analysis.ShapeRecord  `json:"records"`
	Skipped   analysis.SkipCounts     `json:"skipped"`
	Annotated *imaging.EncodedImage   `json:"annotated,omitempty"`
}

func (s *Server) handleShapesAnalyze(args json.RawMessage) (interface{}, error) {
	var a shapesAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	an, done, err := s.analyzerFor(a.Options)
	if err != nil {
		return nil, err
	}
	defer done()

	var res *analysis.Result
	if a.Region == "" || a.Region == "full" {
		res, err = an.Analyze(img)
	} else {
		var r image.Rectangle
		r, err = parseRegion(img.Bounds(), a.Region)
		if err != nil {
			return nil, err
		}
		res, err = an.AnalyzeRegion(img, r)
	}
	if err != nil {
		return nil, err
	}

	out := &ShapesAnalyzeResult{
		Path:    a.Path,
		Width:   res.Width,
		Height:  res.Height,
		Region:  res.Region,
		Backend: res.Backend,
		Count:   res.Count(),
		Labels:  res.Labels(),
		Records: res.Records,
		Skipped: res.Skipped,
	}
	if a.IncludeImage == nil || *a.IncludeImage {
		out.Annotated, err = imaging.EncodePNGBase64(res.Annotated)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type shapesMaskArgs struct {
	Path    string                 `json:"path"`
	Options map[string]interface{} `json:"options"`
}

func (s *Server) handleShapesMask(args json.RawMessage) (interface{}, error) {
	var a shapesMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	an, done, err := s.analyzerFor(a.Options)
	if err != nil {
		return nil, err
	}
	defer done()

	res, err := an.Analyze(img)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNGBase64(res.Mask.Gray())
}

// ShapesConfigResult is the result of the shapes_config tool.
type ShapesConfigResult struct {
	Config  *config.Config `json:"config"`
	Options []string       `json:"options"`
}

func (s *Server) handleShapesConfig() (interface{}, error) {
	return &ShapesConfigResult{
		Config:  s.cfg.Clone(),
		Options: config.Keys(),
	}, nil
}

// analyzerFor returns the shared analyzer, or a one-off analyzer when the
// call overrides options. done must be called when the analyzer is no
// longer needed.
func (s *Server) analyzerFor(options map[string]interface{}) (*analysis.Analyzer, func(), error) {
	if len(options) == 0 {
		return s.analyzer, func() {}, nil
	}

	cfg := s.cfg.Clone()
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := optionString(options[k])
		if err != nil {
			return nil, nil, fmt.Errorf("option %s: %w", k, err)
		}
		if err := cfg.Set(k, v); err != nil {
			return nil, nil, err
		}
	}

	an, err := analysis.New(cfg, analysis.WithLogger(s.log))
	if err != nil {
		return nil, nil, err
	}
	return an, func() { an.Close() }, nil
}

// optionString renders a JSON argument value in the form config.Set parses.
func optionString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value %v", v)
	}
}

// parseRegion resolves a named region or "x1,y1,x2,y2" (x2/y2 exclusive,
// relative to the image's top-left corner) against bounds.
func parseRegion(bounds image.Rectangle, value string) (image.Rectangle, error) {
	if !strings.Contains(value, ",") {
		return imaging.NamedRegion(bounds, value)
	}
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x1,y1,x2,y2", value)
	}
	var c [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", value, err)
		}
		c[i] = n
	}
	return image.Rect(c[0], c[1], c[2], c[3]).Add(bounds.Min), nil
}
