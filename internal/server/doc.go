// Package server exposes the sheet music scanner as an MCP (Model Context
// Protocol) server.
//
// The server runs over stdio using the official go-sdk. Every tool takes the
// path of a page image; pages are loaded once and segmented into sheet lines
// once, then reused across calls.
//
// # Available Tools
//
// Page analysis:
//   - music_find_lines: Sheet lines, staff rows and bar-line groups
//   - music_scan_page: Scan every line of a page concurrently
//
// Line analysis:
//   - music_scan_line: Voice position, bar lines, composites and line start
//   - music_bar_at: The bar line shape starting at x
//   - music_render_line: The line with its composites drawn, as PNG
//   - music_read_text: OCR of the unidentified composites
//
// Training:
//   - music_label_shape: Add a labelled sample to the fine classifier
//
// All coordinates in line results are relative to the line's bounding box.
//
// # Error Handling
//
// Tool failures are reported as tool errors (isError set, the message in the
// text content) rather than protocol errors, so clients can show them.
//
// # Usage
//
//	srv := server.New(cfg, version, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
