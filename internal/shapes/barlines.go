package shapes

import "image"

// scanForBarLines finds the voice position of the line and its bar lines,
// and wraps every bar line in a BarLine composite. inner is the staff region
// relative to the viewport; top and bottom are the outer staff line rows.
func (f *Finder) scanForBarLines(inner image.Rectangle, top, bottom int) {
	staffHeight := bottom - top

	positions, connectors := f.voiceConnectors(inner, staffHeight)
	f.voicePosition = majorityPosition(positions)
	f.logger.Debug("voice position", "position", f.voicePosition, "connectors", len(positions))

	if f.voicePosition > 0 {
		for _, s := range f.shapes {
			if _, ok := positions[s.rect.Min.X]; ok && connectors[s.id] {
				f.addBarLine(s)
			}
		}
	} else {
		f.scanSingleVoice(inner, top, bottom, staffHeight)
		f.pruneBarLines()
	}

	for _, x := range f.BarPositions() {
		f.AddCompositeShape(BarLine, f.shapes[f.barLines[x]])
	}
}

// voiceConnectors returns the voice position by x of every connector taller
// than the staff plus VoiceExtraHeight, and the IDs of all connector
// candidates. The first position recorded at an x wins.
func (f *Finder) voiceConnectors(inner image.Rectangle, staffHeight int) (map[int]int, map[int]bool) {
	positions := make(map[int]int)
	connectors := make(map[int]bool)
	haveFirstVline := false
	for _, s := range f.shapes {
		r := s.rect
		x := r.Min.X
		candidate := false
		switch {
		case s.EffectiveCategory() == Vertical:
			candidate = true
			haveFirstVline = true
		case s.topLevel == Composite:
			if r.Dx() > 0 && r.Dy() >= f.cfg.ConnectorAspect*r.Dx() {
				candidate = true
			} else if !haveFirstVline && x < f.cfg.LineStartWindow {
				candidate = true
			}
			haveFirstVline = true
		case s.topLevel == VLine:
			candidate = true
			haveFirstVline = true
		}
		if !candidate {
			continue
		}
		connectors[s.id] = true
		if r.Dy() <= staffHeight+f.cfg.VoiceExtraHeight {
			continue
		}
		aboveTop := r.Min.Y < inner.Min.Y
		belowBottom := r.Max.Y > inner.Max.Y
		position := 0
		switch {
		case !aboveTop && belowBottom:
			position = 1
		case aboveTop && belowBottom:
			position = 2
		case aboveTop && !belowBottom:
			position = 3
		}
		if position == 0 {
			continue
		}
		if _, ok := positions[x]; !ok {
			positions[x] = position
		}
	}
	return positions, connectors
}

// majorityPosition returns the most frequent position, the lowest on a tie,
// or 0 when there is none.
func majorityPosition(positions map[int]int) int {
	var counts [4]int
	for _, p := range positions {
		counts[p]++
	}
	best, bestCount := 0, 0
	for p := 1; p <= 3; p++ {
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best
}

func (f *Finder) scanSingleVoice(inner image.Rectangle, top, bottom, staffHeight int) {
	lastX := -1
	for i := len(f.shapes) - 1; i >= 0; i-- {
		if isLineLike(f.shapes[i]) {
			lastX = f.shapes[i].rect.Min.X
			break
		}
	}

	haveFirstVline := false
	for _, s := range f.shapes {
		r := s.rect
		x := r.Min.X
		if x < inner.Min.X {
			continue
		}
		if x > inner.Max.X {
			break
		}
		if !isLineLike(s) || r.Intersect(inner).Empty() {
			continue
		}

		// Whatever else is there, the right-most line closes the last bar.
		if x == lastX {
			f.addBarLine(s)
			continue
		}

		if s.topLevel == Composite && float64(r.Dy())/float64(r.Dx()) < f.cfg.BarAspect {
			continue
		}

		if !haveFirstVline && x < f.cfg.LineStartWindow && f.isFirstVline(s, inner) {
			f.addBarLine(s)
			haveFirstVline = true
			continue
		}

		if r.Dy() < staffHeight-f.cfg.StaffHeightSlack {
			continue
		}
		if abs(r.Min.Y-top) > f.cfg.StaffEdgeSlack || abs(r.Max.Y-bottom) > f.cfg.StaffEdgeSlack {
			continue
		}
		if f.hasNoteNeck(s) {
			continue
		}
		f.addBarLine(s)
	}
}

// isFirstVline reports whether no line-like shape touching the inner box
// precedes s.
func (f *Finder) isFirstVline(s *Shape, inner image.Rectangle) bool {
	for _, other := range f.shapes[:s.id] {
		if other.rect.Intersect(inner).Empty() {
			continue
		}
		if isLineLike(other) {
			return false
		}
	}
	return true
}

// hasNoteNeck reports whether s has a round or horizontal line neighbour above,
// below or diagonally, as a note stem does.
func (f *Finder) hasNoteNeck(s *Shape) bool {
	for _, dir := range Directions {
		switch dir {
		case IN, AROUND, E, W:
			continue
		}
		for _, id := range s.Neighbours(dir) {
			switch f.shapes[id].topLevel {
			case Round, HLine:
				return true
			}
		}
	}
	return false
}

func (f *Finder) addBarLine(s *Shape) {
	x := s.rect.Min.X
	if _, ok := f.barLines[x]; ok {
		return
	}
	f.barLines[x] = s.id
	s.UpdateBelief(Bar, f.cfg.BarBelief)
}

// pruneBarLines drops bar lines closer than MinBarDistance to the previous
// one. When only the first bar line precedes a close one, the later is
// dropped; otherwise the middle of the last three goes, which keeps every
// retained gap at or above the minimum.
func (f *Finder) pruneBarLines() {
	if len(f.barLines) == 0 {
		return
	}
	var retained, dropped []int
	for _, x := range f.BarPositions() {
		n := len(retained)
		switch {
		case n == 0 || x-retained[n-1] >= f.cfg.MinBarDistance:
			retained = append(retained, x)
		case n == 1:
			f.logger.Debug("bar lines too close", "previous", retained[0], "x", x)
			dropped = append(dropped, x)
		default:
			f.logger.Debug("bar lines too close", "before_previous", retained[n-2], "previous", retained[n-1], "x", x)
			dropped = append(dropped, retained[n-1])
			retained[n-1] = x
		}
	}
	for _, x := range dropped {
		f.logger.Debug("dropping bar line", "x", x)
		f.shapes[f.barLines[x]].UpdateBelief(Bar, -f.cfg.BarBelief)
		delete(f.barLines, x)
	}
}

func isLineLike(s *Shape) bool {
	return s.topLevel == VLine || s.topLevel == Composite
}
