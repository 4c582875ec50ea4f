package shapes

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"

	"github.com/disintegration/imaging"
)

// ErrNoViewport is returned when a sheet line has no image to scan.
var ErrNoViewport = errors.New("sheet line has no viewport")

// ContourExtractor finds the bounding boxes of ink blobs in a line image.
// Boxes are relative to the image's bounds and sorted by Min.X ascending.
type ContourExtractor interface {
	ContourBoxes(img image.Image) []image.Rectangle
}

// Classifier predicts a category code for a cropped blob. at is the blob's
// position in the line viewport.
type Classifier interface {
	Predict(sample image.Image, at image.Point) int
}

// SheetLine is the geometry of one staff.
//
// InnerBox is the staff region relative to the viewport, and StaffCoordinates
// returns the rows of the top and bottom staff lines in the same coordinates.
type SheetLine interface {
	ViewPort() image.Image
	InnerBox() image.Rectangle
	StaffCoordinates() (top, bottom int)
}

// Finder turns the contour boxes of one sheet line into shapes, builds their
// neighbour graph and groups them into composites. A Finder is not safe for
// concurrent use; scan separate lines with separate Finders.
type Finder struct {
	cfg       Config
	extractor ContourExtractor
	logger    *slog.Logger

	// shapes is the arena, sorted by Min.X. A shape's ID is its index.
	shapes     []*Shape
	composites []*CompositeShape

	voicePosition int
	barLines      map[int]int
	lineStart     LineStart
}

// New creates a Finder. A nil logger means slog.Default().
func New(cfg Config, extractor ContourExtractor, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		cfg:           cfg,
		extractor:     extractor,
		logger:        logger,
		voicePosition: -1,
		barLines:      make(map[int]int),
		lineStart:     LineStart{NoteHead: -1},
	}
}

func (f *Finder) reset() {
	f.shapes = nil
	f.composites = nil
	f.voicePosition = -1
	f.barLines = make(map[int]int)
	f.lineStart = LineStart{NoteHead: -1}
}

// FirstPass creates one shape per rectangle, classifies it and links it to
// the shapes already known. Rectangles are relative to the viewport's bounds.
// fine may be nil; coarse may be nil too, in which case every shape stays
// TopLevelUnknown. Any previous scan state is discarded.
func (f *Finder) FirstPass(rects []image.Rectangle, viewport image.Image, coarse, fine Classifier) {
	f.reset()

	sorted := make([]image.Rectangle, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min.X < sorted[j].Min.X })

	var origin image.Point
	if viewport != nil {
		origin = viewport.Bounds().Min
	}

	for _, r := range sorted {
		s := NewShape(len(f.shapes), r)
		if viewport != nil && (coarse != nil || fine != nil) {
			sample := imaging.Crop(viewport, s.rect.Add(origin))
			if coarse != nil {
				s.topLevel = TopLevelFromCode(coarse.Predict(sample, s.rect.Min))
			}
			if fine != nil {
				s.category = CategoryFromCode(fine.Predict(sample, s.rect.Min))
			}
		}
		for _, known := range f.shapes {
			known.MaybeAddNeighbour(s, f.cfg.SmallDistance)
		}
		f.shapes = append(f.shapes, s)
	}
	f.logger.Debug("first pass done", "shapes", len(f.shapes))
}

// InitLineScan extracts the line's contour boxes, runs the first pass and
// finds the voice position and bar lines.
func (f *Finder) InitLineScan(line SheetLine, coarse, fine Classifier) error {
	viewport := line.ViewPort()
	if viewport == nil {
		return ErrNoViewport
	}
	if f.extractor == nil {
		return fmt.Errorf("init line scan: no contour extractor")
	}
	rects := f.extractor.ContourBoxes(viewport)
	f.FirstPass(rects, viewport, coarse, fine)

	top, bottom := line.StaffCoordinates()
	f.scanForBarLines(line.InnerBox(), top, bottom)
	f.logger.Debug("line scan initialised", "voice_position", f.voicePosition, "bar_lines", len(f.barLines))
	return nil
}

// ScanLine runs the whole pipeline on one sheet line: first pass, bar lines,
// belief annotation, the start of line walk, discards and notes. The result
// is available through Composites.
func (f *Finder) ScanLine(line SheetLine, coarse, fine Classifier) error {
	if err := f.InitLineScan(line, coarse, fine); err != nil {
		return fmt.Errorf("scan line: %w", err)
	}
	inner := line.InnerBox()
	f.annotateBeliefs(inner)
	f.lineStart = f.scanStartOfLine(inner)
	f.scanForDiscards(inner)
	f.scanForNotes()
	f.logger.Debug("line scanned", "shapes", len(f.shapes), "composites", len(f.composites))
	return nil
}

// VoicePosition is 0 for a single voice line, 1, 2 or 3 for the top, middle
// or bottom line of a voice group, and -1 before a scan.
func (f *Finder) VoicePosition() int { return f.voicePosition }

// BarPositions returns the x coordinates of the bar lines in ascending order.
func (f *Finder) BarPositions() []int {
	xs := make([]int, 0, len(f.barLines))
	for x := range f.barLines {
		xs = append(xs, x)
	}
	sort.Ints(xs)
	return xs
}

// BarAt returns the bar line shape at x, or nil if there is none.
func (f *Finder) BarAt(x int) *Shape {
	id, ok := f.barLines[x]
	if !ok {
		f.logger.Warn("no bar line exists at position", "x", x)
		return nil
	}
	return f.shapes[id]
}

// Composites returns the composites built by the last scan, in creation order.
func (f *Finder) Composites() []*CompositeShape { return f.composites }

// Shapes returns the arena, sorted by Min.X.
func (f *Finder) Shapes() []*Shape { return f.shapes }

// LineStart returns the result of the start of line walk.
func (f *Finder) LineStart() LineStart { return f.lineStart }

// Shape returns the shape with the given ID, or nil.
func (f *Finder) Shape(id int) *Shape {
	if id < 0 || id >= len(f.shapes) {
		return nil
	}
	return f.shapes[id]
}

// ShapeAt returns the first shape whose rectangle contains p.
func (f *Finder) ShapeAt(p image.Point) *Shape {
	for _, s := range f.shapes {
		if p.In(s.rect) {
			return s
		}
	}
	return nil
}

// IsShapeInComposite reports whether any composite claims s.
func (f *Finder) IsShapeInComposite(s *Shape) bool {
	for _, c := range f.composites {
		if c.Contains(s.id) {
			return true
		}
	}
	return false
}

// AddCompositeShape creates a composite around seed, absorbs the neighbours
// the composite type accepts and stores it.
func (f *Finder) AddCompositeShape(typ CompositeType, seed *Shape) *CompositeShape {
	c := NewCompositeShape(typ, seed)
	for _, dir := range Directions {
		for _, id := range seed.Neighbours(dir) {
			n := f.shapes[id]
			if f.absorbs(typ, dir, n) {
				c.AddShape(n)
			}
		}
	}
	f.composites = append(f.composites, c)
	return c
}

func (f *Finder) absorbs(typ CompositeType, dir Neighbourhood, n *Shape) bool {
	switch typ {
	case BarLine:
		if dir == E || dir == W {
			return false
		}
		return n.topLevel == Round || n.topLevel == VLine
	case NoteComposite:
		switch n.topLevel {
		case Round:
			return n.Area() < f.cfg.NoteDotArea && (dir == E || dir == SE)
		case Composite:
			return dir == W || dir == SW || dir == NW
		case HLine:
			switch dir {
			case N, S, NE, SE, NW, SW:
				return true
			}
		}
		return false
	}
	return true
}

// neighbours returns every neighbour of s in Directions order.
func (f *Finder) neighbours(s *Shape) []*Shape {
	var out []*Shape
	for _, dir := range Directions {
		for _, id := range s.Neighbours(dir) {
			out = append(out, f.shapes[id])
		}
	}
	return out
}
