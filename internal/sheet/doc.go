// Package sheet splits a rectified sheet music page into sheet lines.
//
// A sheet line is one staff. Its inner box holds the five staff lines; the
// bounding box adds padding for notes above and below, and the viewport is a
// copy of the page inside the bounding box. Lines joined by long vertical
// strokes (bar lines across a piano part) are grouped together.
//
// ScanAll runs a shapes.Finder over every line of a page concurrently.
package sheet
