package shapes

import "image"

// LineStart describes the furniture at the start of a line: clef, time and
// accidentals before the first note head.
type LineStart struct {
	// Inspected is the number of shapes the walk looked at.
	Inspected int `json:"inspected"`
	// Candidates are IDs of composite shapes in the window, the clef, time
	// and accidental candidates.
	Candidates []int `json:"candidates,omitempty"`
	// NoteHead is the ID of the note head that ended the walk, or -1.
	NoteHead int `json:"note_head"`
	// EndX is where the furniture ends: the note head's x, or the window's
	// right edge.
	EndX int `json:"end_x"`
}

// annotateBeliefs scores note heads, specks and pieces from size, position
// relative to the inner box and containment.
func (f *Finder) annotateBeliefs(inner image.Rectangle) {
	for _, s := range f.shapes {
		outside := s.rect.Intersect(inner).Empty()
		switch s.topLevel {
		case Round:
			if s.Area() > f.cfg.NoteHeadArea {
				s.UpdateBelief(NoteHead, 1)
			}
			if outside {
				f.speckOrPiece(s)
			}
			if len(s.Neighbours(IN)) > 0 {
				s.UpdateBelief(Piece, 1)
			}
		case VLine:
			if outside {
				f.speckOrPiece(s)
			}
		}
	}
}

func (f *Finder) speckOrPiece(s *Shape) {
	if s.NumberOfNeighbours() == 0 && s.Area() <= f.cfg.NoteHeadArea {
		s.UpdateBelief(Speck, 2)
		return
	}
	s.UpdateBelief(Piece, 1)
}

// scanStartOfLine walks the shapes left to right through the start of line
// window and stops at the first note head. It does not create composites.
func (f *Finder) scanStartOfLine(inner image.Rectangle) LineStart {
	limit := inner.Min.X + f.cfg.StartOfLineWidth
	ls := LineStart{NoteHead: -1, EndX: limit}
	for _, s := range f.shapes {
		if s.rect.Min.X >= limit {
			break
		}
		ls.Inspected++
		switch s.topLevel {
		case Round:
			if s.Area() >= f.cfg.NoteHeadArea {
				ls.NoteHead = s.id
				ls.EndX = s.rect.Min.X
				f.logger.Debug("start of line ends at note head", "x", ls.EndX)
				return ls
			}
		case Composite:
			f.logger.Debug("start of line candidate", "x", s.rect.Min.X, "rect", s.rect)
			ls.Candidates = append(ls.Candidates, s.id)
		}
	}
	return ls
}

// scanForDiscards wraps unclaimed shapes that are away from the staff, along
// with all their neighbours, into OutOfLine composites.
func (f *Finder) scanForDiscards(inner image.Rectangle) {
	for _, s := range f.shapes {
		if f.IsShapeInComposite(s) || !s.rect.Intersect(inner).Empty() {
			continue
		}
		touches := false
		for _, n := range f.neighbours(s) {
			if !n.rect.Intersect(inner).Empty() {
				touches = true
				break
			}
		}
		if !touches {
			f.AddCompositeShape(OutOfLine, s)
		}
	}
}

// scanForNotes seeds a Note composite at every unclaimed note or note head.
func (f *Finder) scanForNotes() {
	for _, s := range f.shapes {
		if f.IsShapeInComposite(s) {
			continue
		}
		switch s.EffectiveCategory() {
		case NoteHead, Note:
			f.AddCompositeShape(NoteComposite, s)
		}
	}
}
