// Package imaging loads sheet music pages and produces the images returned by
// the MCP tools.
//
// # Loading
//
// ImageCache decodes each page once and shares it between tool calls. It is
// safe for concurrent use.
//
// # Output
//
// Crop cuts and scales regions, EncodePNG turns any image into a base64 PNG
// result, and RenderOverlay draws a scanned line's inner box, staff lines and
// composites on a copy of its viewport, one palette colour per composite type.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive
//
// Overlay coordinates are relative to the viewport they are drawn on.
package imaging
