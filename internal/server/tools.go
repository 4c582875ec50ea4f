package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/sheetmusic-mcp/internal/imaging"
)

// handler runs one tool. Its result is marshalled to JSON text content; an
// imageResult also carries a PNG.
type handler func(ctx context.Context, args json.RawMessage) (any, error)

// imageResult is a tool result with an attached image.
type imageResult struct {
	Meta  any
	Image *imaging.EncodedImage
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	pathProp = map[string]any{"type": "string", "description": "Absolute path to the sheet music page image"}
	lineProp = map[string]any{"type": "integer", "description": "Sheet line index, 0 is the top staff", "minimum": 0}
)

// toolDef is a tool definition and its handler.
type toolDef struct {
	tool    *mcp.Tool
	handler handler
}

// toolDefinitions returns every tool the server provides.
func (s *Server) toolDefinitions() []toolDef {
	return []toolDef{
		{
			tool: &mcp.Tool{
				Name:        "music_find_lines",
				Description: "Segment a sheet music page into sheet lines (staves). Returns each line's inner box, bounding box and staff line rows, and the groups of lines joined by bar lines.",
				InputSchema: inputSchema(map[string]any{"path": pathProp}, []string{"path"}),
			},
			handler: s.handleFindLines,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_scan_line",
				Description: "Scan one sheet line: voice position, bar line positions, composites (notes, bar lines, discards) and the start of line report. Coordinates are relative to the line's bounding box.",
				InputSchema: inputSchema(map[string]any{"path": pathProp, "line": lineProp}, []string{"path", "line"}),
			},
			handler: s.handleScanLine,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_scan_page",
				Description: "Scan every sheet line of a page concurrently and return one music_scan_line summary per line.",
				InputSchema: inputSchema(map[string]any{"path": pathProp}, []string{"path"}),
			},
			handler: s.handleScanPage,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_bar_at",
				Description: "Return the bar line shape that starts at x on a sheet line, or found=false.",
				InputSchema: inputSchema(map[string]any{
					"path": pathProp,
					"line": lineProp,
					"x":    map[string]any{"type": "integer", "description": "X coordinate of the bar line, relative to the line's bounding box"},
				}, []string{"path", "line", "x"}),
			},
			handler: s.handleBarAt,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_render_line",
				Description: "Render a sheet line with its inner box, staff lines and composites drawn in one colour per composite type. Returns a PNG image.",
				InputSchema: inputSchema(map[string]any{
					"path":   pathProp,
					"line":   lineProp,
					"labels": map[string]any{"type": "boolean", "description": "Print the first letter of each composite's type above it", "default": true},
				}, []string{"path", "line"}),
			},
			handler: s.handleRenderLine,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_label_shape",
				Description: "Teach the fine classifier: the shape at (x, y) on a sheet line is stored as a sample of the given category. The classifier is used for scans once it holds enough samples.",
				InputSchema: inputSchema(map[string]any{
					"path":     pathProp,
					"line":     lineProp,
					"x":        map[string]any{"type": "integer", "description": "X coordinate inside the shape, relative to the line's bounding box"},
					"y":        map[string]any{"type": "integer", "description": "Y coordinate inside the shape, relative to the line's bounding box"},
					"category": map[string]any{"type": "string", "description": "Category name (e.g. \"note head\", \"sharp\") or its training key (e.g. \"h\", \"s\")"},
				}, []string{"path", "line", "x", "y", "category"}),
			},
			handler: s.handleLabelShape,
		},
		{
			tool: &mcp.Tool{
				Name:        "music_read_text",
				Description: "Read the text (chord names, tempo and expression words, lyrics) of the unidentified composites of a sheet line with OCR.",
				InputSchema: inputSchema(map[string]any{
					"path":     pathProp,
					"line":     lineProp,
					"language": map[string]any{"type": "string", "description": "Tesseract language code. Defaults to the configured language"},
				}, []string{"path", "line"}),
			},
			handler: s.handleReadText,
		},
	}
}

func (s *Server) registerTools() {
	for _, def := range s.toolDefinitions() {
		s.addTool(def.tool, def.handler)
	}
}

// addTool registers h under tool. Handler errors become tool errors.
func (s *Server) addTool(tool *mcp.Tool, h handler) {
	name := tool.Name
	s.mcp.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}

		result, err := h(ctx, args)
		if err != nil {
			s.logger.Warn("tool failed", "tool", name, "error", err)
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("%s: %w", name, err))
			return &res, nil
		}

		meta := result
		var img *imaging.EncodedImage
		if ir, ok := result.(*imageResult); ok {
			meta, img = ir.Meta, ir.Image
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}

		res := &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}
		if img != nil {
			png, err := img.Bytes()
			if err != nil {
				var errRes mcp.CallToolResult
				errRes.SetError(fmt.Errorf("encode image: %w", err))
				return &errRes, nil
			}
			res.Content = append(res.Content, &mcp.ImageContent{Data: png, MIMEType: img.MimeType})
		}
		return res, nil
	})
}
