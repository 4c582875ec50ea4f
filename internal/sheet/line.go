package sheet

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/sheetmusic-mcp/internal/detection"
)

// SheetLine is one staff cut out of a page. It implements shapes.SheetLine.
type SheetLine struct {
	// Index is the line's position on the page, top to bottom.
	Index int

	inner    image.Rectangle
	bbox     image.Rectangle
	viewport *image.NRGBA
	staff    detection.Staff
	padding  int
	slope    float64
	valid    bool
}

// NewSheetLine cuts the line with the given inner box out of page. The
// bounding box is the inner box padded by the configured amounts and clamped
// to the page; the viewport is a copy of that region.
//
// With cfg.Deskew the slope of the staff line segments inside the inner box
// is measured, and when it exceeds cfg.MinSkewAngle the viewport is rotated
// about its centre to level them. The staff lines are located on the
// levelled viewport.
func NewSheetLine(inner image.Rectangle, page image.Image, cfg Config) *SheetLine {
	pb := page.Bounds()
	bbox := image.Rect(
		max(pb.Min.X, inner.Min.X-cfg.HorizontalPadding),
		max(pb.Min.Y, inner.Min.Y-cfg.VerticalPadding),
		min(pb.Max.X, inner.Max.X+cfg.HorizontalPadding),
		min(pb.Max.Y, inner.Max.Y+cfg.VerticalPadding),
	)
	l := &SheetLine{
		inner:    inner,
		bbox:     bbox,
		viewport: imaging.Crop(page, bbox),
		padding:  cfg.VerticalPadding,
	}

	gray := detection.Gray(l.viewport)
	if cfg.Deskew {
		l.slope = measureSlope(gray, l.InnerBox(), inkLevel(gray, cfg), cfg)
		if math.Abs(l.slope) >= math.Tan(cfg.MinSkewAngle*math.Pi/180) && l.slope != 0 {
			l.viewport = levelViewport(l.viewport, l.slope)
			gray = detection.Gray(l.viewport)
		}
	}
	l.staff = detection.StaffProfile(gray, l.InnerBox(), inkLevel(gray, cfg), cfg.StaffMinFraction)
	l.valid = isStaff(l.staff, cfg)
	return l
}

// inkLevel returns the configured ink threshold, or Otsu's level for gray.
func inkLevel(gray *image.Gray, cfg Config) uint8 {
	if cfg.Threshold != 0 {
		return cfg.Threshold
	}
	return detection.OtsuLevel(gray)
}

// measureSlope returns the width-weighted slope of the long horizontal
// strokes inside inner.
func measureSlope(gray *image.Gray, inner image.Rectangle, level uint8, cfg Config) float64 {
	lines := detection.IsolateHorizontal(gray, gray.Rect.Dx()/cfg.HorizontalSizeFudge, 1)
	mask := detection.InkMask(lines, level)
	return detection.WeightedSlope(detection.HorizontalSegments(mask, inner, cfg.MinSegmentLength, cfg.MaxSkewAngle))
}

// levelViewport rotates viewport about its centre so that strokes with the
// given slope become horizontal. The result keeps the viewport's size;
// uncovered corners are paper white.
func levelViewport(viewport *image.NRGBA, slope float64) *image.NRGBA {
	w, h := viewport.Rect.Dx(), viewport.Rect.Dy()
	rotated := imaging.Rotate(viewport, math.Atan(slope)*180/math.Pi, color.White)
	return imaging.CropCenter(rotated, w, h)
}

func isStaff(s detection.Staff, cfg Config) bool {
	if len(s.Lines) < cfg.MinStaffLines {
		return false
	}
	if len(s.Lines) == 0 {
		return cfg.MinStaffHeight <= 0
	}
	return s.Lines[len(s.Lines)-1]-s.Lines[0] >= cfg.MinStaffHeight
}

// ViewPort returns the line's own copy of its bounding box region.
func (l *SheetLine) ViewPort() image.Image { return l.viewport }

// InnerBox returns the staff region relative to the viewport.
func (l *SheetLine) InnerBox() image.Rectangle { return l.inner.Sub(l.bbox.Min) }

// StaffCoordinates returns the top and bottom staff line rows relative to the
// viewport.
func (l *SheetLine) StaffCoordinates() (top, bottom int) { return l.staff.Coordinates() }

// Staff returns the staff lines found in the line, relative to the viewport.
func (l *SheetLine) Staff() detection.Staff { return l.staff }

// Slope returns the measured skew in rows per column, positive when the staff
// descends to the right. It is 0 when deskewing is off.
func (l *SheetLine) Slope() float64 { return l.slope }

// IsStaff reports whether the line holds enough staff lines, spread far
// enough apart, to be a staff rather than text or a frame.
func (l *SheetLine) IsStaff() bool { return l.valid }

// PageInnerBox and BoundingBox are in page coordinates.
func (l *SheetLine) PageInnerBox() image.Rectangle { return l.inner }
func (l *SheetLine) BoundingBox() image.Rectangle  { return l.bbox }

// LeftEdge and RightEdge are the bounding box's page columns.
func (l *SheetLine) LeftEdge() int  { return l.bbox.Min.X }
func (l *SheetLine) RightEdge() int { return l.bbox.Max.X }

// CrossedBy reports whether v, in page coordinates, runs through the line:
// its x lies within the inner box and it overlaps the inner box shrunk by half
// the vertical padding at both ends.
func (l *SheetLine) CrossedBy(v detection.VerticalLine) bool {
	if v.X < l.inner.Min.X || v.X > l.inner.Max.X {
		return false
	}
	top, bottom := min(v.Top, v.Bottom), max(v.Top, v.Bottom)
	return top <= l.inner.Max.Y-l.padding/2 && bottom >= l.inner.Min.Y+l.padding/2
}
