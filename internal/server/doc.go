// Package server implements the MCP (Model Context Protocol) server for the
// shape analysis tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never mix with protocol traffic.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Shape Analysis:
//   - shapes_analyze: Detect, classify and measure objects; annotated image
//   - shapes_mask: The binary mask contours are traced from
//   - shapes_config: Options in effect and the names that can be overridden
//
// shapes_analyze and shapes_mask accept an "options" object whose keys are
// the configuration option names. Overrides apply to that call only.
//
// # Image Caching
//
// Images are decoded once per path and kept for the lifetime of the server
// process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Unknown methods get -32601 and
// malformed tools/call parameters -32602.
package server
