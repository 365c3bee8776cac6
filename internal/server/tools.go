package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func optionsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"description": "Per-call overrides of analysis options, keyed by option name " +
			"(e.g. {\"circularity_first\": true, \"simplification_epsilon_fraction\": 0.02}). " +
			"Call shapes_config for the full list and current values.",
		"additionalProperties": true,
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"description": "Optional area to search: a named region (full, top-left, top-right, bottom-left, " +
			"bottom-right, top-half, bottom-half, left-half, right-half, center) or explicit " +
			"\"x1,y1,x2,y2\" with x2/y2 exclusive. Coordinates in the result always refer to the whole image.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent shape analysis calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Shape Analysis
		{
			Name: "shapes_analyze",
			Description: "Detect and classify the outlined objects in an image (Triangle, Square, Rectangle, " +
				"Pentagon, Hexagon, Circle or Polygon). Returns one record per object in discovery order " +
				"(top to bottom, then left to right) with area, perimeter, circularity, vertex count and " +
				"bounding box, plus the annotated image as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProperty(),
					"region":  regionProperty(),
					"options": optionsProperty(),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the annotated image in the result. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "shapes_mask",
			Description: "Return the binary mask that contours are traced from (white = foreground) as base64 PNG. " +
				"Use this to see why an object was missed or merged with a neighbour before tuning options.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProperty(),
					"options": optionsProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "shapes_config",
			Description: "Show the analysis options in effect and the names accepted in the options argument of the other shape tools.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
