package shapes

import "image"

// CompositeType is the musical role of a group of shapes.
type CompositeType int

const (
	// Unknown is the initial state.
	Unknown CompositeType = iota
	// NoteComposite is a note head plus optional stem, dot, accidental and
	// expressive marks. Breaks are notes too.
	NoteComposite
	// NoteGroup is several notes tied together by connectors; chords are
	// note groups.
	NoteGroup
	// LineStartComposite is bar line, clef, time and accidentals at the start
	// of a line.
	LineStartComposite
	// BarLine is a single or double line, possibly with repeat marks.
	BarLine
	// Other is an unidentified item inside the inner box, e.g. a chord name.
	Other
	// OutOfLine is an unidentified item outside the inner box: writing
	// between staves or a piece of the adjacent line.
	OutOfLine
)

var compositeTypeNames = [...]string{"UNKNOWN", "NOTE", "NOTEGROUP", "LINESTART", "BARLINE", "OTHER", "OUTOFLINE"}

func (t CompositeType) String() string {
	if t < 0 || int(t) >= len(compositeTypeNames) {
		return "UNKNOWN"
	}
	return compositeTypeNames[t]
}

// CompositeShape groups shapes that form one symbol. It does not own its
// shapes; they are referenced by arena ID and the first one is the seed.
type CompositeShape struct {
	typ    CompositeType
	shapes []int
	box    image.Rectangle
}

// NewCompositeShape creates a composite seeded with seed.
func NewCompositeShape(typ CompositeType, seed *Shape) *CompositeShape {
	c := &CompositeShape{typ: typ}
	c.AddShape(seed)
	return c
}

// AddShape appends s and grows the bounding box to include it.
func (c *CompositeShape) AddShape(s *Shape) {
	if len(c.shapes) == 0 {
		c.box = s.Rect()
	} else {
		c.box = c.box.Union(s.Rect())
	}
	c.shapes = append(c.shapes, s.ID())
}

// Type returns the composite's musical role.
func (c *CompositeShape) Type() CompositeType { return c.typ }

// Rect returns the union of the member rectangles.
func (c *CompositeShape) Rect() image.Rectangle { return c.box }

// Shapes returns the member IDs; the first is the seed.
func (c *CompositeShape) Shapes() []int { return c.shapes }

// Seed returns the ID of the shape the composite was built around.
func (c *CompositeShape) Seed() int { return c.shapes[0] }

// Contains reports whether the shape with the given ID is a member.
func (c *CompositeShape) Contains(id int) bool {
	for _, s := range c.shapes {
		if s == id {
			return true
		}
	}
	return false
}
