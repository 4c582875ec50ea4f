// Package detection provides the pixel-level collaborators of the sheet music
// scanner: ink blob extraction, staff line isolation and vertical stroke
// detection.
//
// # Blob Extraction
//
// ContourExtractor implements shapes.ContourExtractor. It removes the staff
// lines from a sheet line's viewport, thresholds the rest and returns the
// bounding box of every 8-connected ink component, sorted left to right. With
// the gocv build tag, CVContourExtractor does the same with OpenCV.
//
// # Staff Lines
//
// IsolateHorizontal keeps only long horizontal strokes, RemoveHorizontal
// erases them. StaffProfile locates the staff lines inside a sheet line's
// inner box from the horizontal ink projection.
//
// # Skew
//
// HorizontalSegments finds near-horizontal ink segments by Hough voting and
// WeightedSlope averages their slopes by width, so a skewed line can be
// rotated level before its staff is profiled.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rectangles use inclusive top-left and exclusive bottom-right
//
// Boxes returned by ContourBoxes are relative to the input image's bounds, so
// a sub-image's boxes start at (0, 0).
//
// # Limitations
//
// The algorithms expect dark ink on light paper. Staff lines must be level,
// or levelled with the skew measured above; skew beyond the searched angle
// merges staff lines with the notes they carry.
package detection
