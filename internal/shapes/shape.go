package shapes

import (
	"fmt"
	"image"
	"strings"
)

// Neighbourhood is the position of a neighbour relative to a shape: compass
// directions plus containment and overlap.
type Neighbourhood int

const (
	NoNeighbourhood Neighbourhood = iota
	N
	NE
	E
	SE
	S
	SW
	W
	NW
	IN
	AROUND
	INTERSECT
)

// Directions lists every neighbourhood a shape can record, in iteration order.
var Directions = []Neighbourhood{N, NE, E, SE, S, SW, W, NW, IN, AROUND, INTERSECT}

var neighbourhoodNames = [...]string{"", "N", "NE", "E", "SE", "S", "SW", "W", "NW", "IN", "AROUND", "INTERSECT"}

func (n Neighbourhood) String() string {
	if n < 0 || int(n) >= len(neighbourhoodNames) || n == NoNeighbourhood {
		return "unknown"
	}
	return neighbourhoodNames[n]
}

// Opposite returns the direction the other shape records for the same
// relation. INTERSECT is its own opposite.
func (n Neighbourhood) Opposite() Neighbourhood {
	switch n {
	case N:
		return S
	case S:
		return N
	case E:
		return W
	case W:
		return E
	case NE:
		return SW
	case SW:
		return NE
	case SE:
		return NW
	case NW:
		return SE
	case IN:
		return AROUND
	case AROUND:
		return IN
	}
	return n
}

// Shape is a classified bounding box inside one sheet line. Neighbours are
// stored as IDs into the owning Finder's shape arena.
type Shape struct {
	id   int
	rect image.Rectangle

	topLevel TopLevelCategory
	category Category

	beliefs    map[Category]int
	neighbours map[Neighbourhood][]int
}

// NewShape creates a shape with the given arena ID. The rectangle is relative
// to the enclosing sheet line's viewport and never changes.
func NewShape(id int, rect image.Rectangle) *Shape {
	return &Shape{
		id:         id,
		rect:       rect.Canon(),
		beliefs:    make(map[Category]int),
		neighbours: make(map[Neighbourhood][]int),
	}
}

// ID returns the shape's index in its Finder's arena.
func (s *Shape) ID() int { return s.id }

// Rect returns the bounding box relative to the line's viewport.
func (s *Shape) Rect() image.Rectangle { return s.rect }

// TopLevel returns the coarse category.
func (s *Shape) TopLevel() TopLevelCategory { return s.topLevel }

// Category returns the fine category, Undefined when unclassified.
func (s *Shape) Category() Category { return s.category }

// SetTopLevel and SetCategory override the classifiers' results.
func (s *Shape) SetTopLevel(c TopLevelCategory) { s.topLevel = c }
func (s *Shape) SetCategory(c Category) { s.category = c }

// Area returns the rectangle's area in square pixels.
func (s *Shape) Area() int {
	return s.rect.Dx() * s.rect.Dy()
}

// UpdateBelief adds diff (which may be negative) to the score of cat.
func (s *Shape) UpdateBelief(cat Category, diff int) {
	s.beliefs[cat] += diff
}

// CategoryConfidence returns the accumulated score of cat, 0 if never scored.
func (s *Shape) CategoryConfidence(cat Category) int {
	return s.beliefs[cat]
}

// MostLikelyCategory returns the category with the highest positive belief.
// Ties go to the lowest category value; with no positive belief the result is
// Undefined.
func (s *Shape) MostLikelyCategory() Category {
	best := Undefined
	bestScore := 0
	for cat, score := range s.beliefs {
		if score > bestScore || (score == bestScore && score > 0 && cat < best) {
			best = cat
			bestScore = score
		}
	}
	return best
}

// EffectiveCategory is the fine classifier's category when one was assigned,
// otherwise the most likely belief.
func (s *Shape) EffectiveCategory() Category {
	if s.category != Undefined {
		return s.category
	}
	return s.MostLikelyCategory()
}

// Neighbours returns the IDs recorded in direction dir, in insertion order.
func (s *Shape) Neighbours(dir Neighbourhood) []int {
	return s.neighbours[dir]
}

// HasNeighbour reports whether id was recorded in direction dir.
func (s *Shape) HasNeighbour(dir Neighbourhood, id int) bool {
	for _, n := range s.neighbours[dir] {
		if n == id {
			return true
		}
	}
	return false
}

// NumberOfNeighbours counts neighbours over all directions.
func (s *Shape) NumberOfNeighbours() int {
	total := 0
	for _, list := range s.neighbours {
		total += len(list)
	}
	return total
}

func (s *Shape) addNeighbour(where Neighbourhood, other *Shape) {
	s.neighbours[where] = append(s.neighbours[where], other.id)
}

func (s *Shape) link(where Neighbourhood, other *Shape) Neighbourhood {
	s.addNeighbour(where, other)
	other.addNeighbour(where.Opposite(), s)
	return where
}

// MaybeAddNeighbour decides whether other is adjacent to s and records the
// relation on both shapes. Shapes are inserted left to right, so other never
// starts left of s. At most one relation is recorded per pair; the returned
// value is that relation, or NoNeighbourhood.
func (s *Shape) MaybeAddNeighbour(other *Shape, smallDistance int) Neighbourhood {
	r, o := s.rect, other.rect

	if o.In(r) {
		return s.link(AROUND, other)
	}
	// Equal Min.X leaves the order of the two arbitrary.
	if r.In(o) {
		return s.link(IN, other)
	}
	if !r.Intersect(o).Empty() {
		return s.link(INTERSECT, other)
	}

	if abs(o.Min.X-r.Max.X) <= smallDistance {
		if o.Min.Y <= r.Min.Y &&
			(abs(o.Max.Y-r.Min.Y) <= smallDistance || (o.Max.Y > r.Min.Y && o.Max.Y <= r.Max.Y)) {
			return s.link(NE, other)
		}
		if o.Max.Y >= r.Max.Y &&
			(abs(o.Min.Y-r.Max.Y) <= smallDistance || (o.Min.Y > r.Min.Y && o.Min.Y <= r.Max.Y)) {
			return s.link(SE, other)
		}
		if o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y {
			return s.link(E, other)
		}
		if o.Min.Y <= r.Min.Y && o.Max.Y >= r.Max.Y {
			return s.link(E, other)
		}
	}

	overlapX := o.Min.X <= r.Max.X && o.Max.X >= r.Min.X
	if abs(r.Min.Y-o.Max.Y) <= smallDistance {
		if overlapX {
			return s.link(N, other)
		}
		return NoNeighbourhood
	}
	if abs(o.Min.Y-r.Max.Y) <= smallDistance && overlapX {
		return s.link(S, other)
	}
	return NoNeighbourhood
}

func (s *Shape) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shape %d %v %s", s.id, s.rect, s.topLevel)
	if s.category != Undefined {
		fmt.Fprintf(&b, " (%s)", s.category)
	}
	for _, cat := range sortedBeliefs(s.beliefs) {
		fmt.Fprintf(&b, " %s=%d", cat, s.beliefs[cat])
	}
	return b.String()
}

func sortedBeliefs(beliefs map[Category]int) []Category {
	cats := make([]Category, 0, len(beliefs))
	for c := Undefined; c <= Speck; c++ {
		if _, ok := beliefs[c]; ok {
			cats = append(cats, c)
		}
	}
	return cats
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
