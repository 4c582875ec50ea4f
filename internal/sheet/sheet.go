package sheet

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/sheetmusic-mcp/internal/detection"
)

// ErrLineIndex is returned when a line index is outside the page.
var ErrLineIndex = errors.New("line index out of range")

// maxGroupLines caps crossing-based groups.
const maxGroupLines = 4

// LineGroup is a set of consecutive lines played together, such as the two
// staves of a piano part.
type LineGroup struct {
	Lines []int `json:"lines"`
}

// Sheet is a segmented page.
type Sheet struct {
	Bounds image.Rectangle
	Lines  []*SheetLine
	Groups []LineGroup
	// Left and Right are the page's common staff margins.
	Left, Right int
	// Verticals are the long vertical strokes between the margins.
	Verticals []detection.VerticalLine
	// Rejected are the inner boxes of outlines that held no staff, such as
	// text blocks or frames, in page coordinates.
	Rejected []image.Rectangle
}

// Line returns the line at index i.
func (s *Sheet) Line(i int) (*SheetLine, error) {
	if i < 0 || i >= len(s.Lines) {
		return nil, fmt.Errorf("%w: %d (page has %d lines)", ErrLineIndex, i, len(s.Lines))
	}
	return s.Lines[i], nil
}

// GroupOf returns the index of the group holding line i, or -1.
func (s *Sheet) GroupOf(i int) int {
	for g, group := range s.Groups {
		for _, l := range group.Lines {
			if l == i {
				return g
			}
		}
	}
	return -1
}

// FindLineOutlines returns the inner boxes of the staves on page, in page
// coordinates and sorted top to bottom.
//
// # Algorithm
//
//  1. Keep only strokes longer than the page width / HorizontalSizeFudge
//  2. Spread the ink vertically by MergeHeight so the five lines of a staff
//     become one block
//  3. Optional Gaussian blur, then threshold at mid gray
//  4. Components; their boxes are shrunk back by the spread and filtered by
//     area and height
func FindLineOutlines(page image.Image, cfg Config) []image.Rectangle {
	gray := detection.Gray(page)
	if gray.Rect.Empty() {
		return nil
	}
	lines := detection.IsolateHorizontal(gray, gray.Rect.Dx()/cfg.HorizontalSizeFudge, 1)
	var merged image.Image = detection.Erode(lines, 1, cfg.MergeHeight)
	if cfg.OutlineBlur > 0 {
		merged = blur.Gaussian(merged, cfg.OutlineBlur)
	}
	binary := segment.Threshold(merged, 128)

	grow, shrink := cfg.MergeHeight/2, (cfg.MergeHeight-1)/2
	origin := page.Bounds().Min
	var outlines []image.Rectangle
	for _, c := range detection.Components(detection.InkMask(binary, 128), 1) {
		r := c.Bounds
		r.Min.Y += grow
		r.Max.Y -= shrink
		if r.Empty() {
			continue
		}
		area := r.Dx() * r.Dy()
		if area < cfg.MinOutlineArea || r.Dy() < cfg.MinOutlineHeight {
			continue
		}
		if cfg.MaxOutlineArea > 0 && area > cfg.MaxOutlineArea {
			continue
		}
		outlines = append(outlines, r.Add(origin))
	}
	sort.SliceStable(outlines, func(i, j int) bool { return outlines[i].Min.Y < outlines[j].Min.Y })
	return outlines
}

// OverallLeftRight estimates the page's staff margins from the most common
// left and right edges of lines, in 5 pixel buckets. The result is widened by
// one bucket and clamped to [0, maxWidth].
func OverallLeftRight(lines []*SheetLine, maxWidth int) (left, right int) {
	if len(lines) == 0 {
		return 0, maxWidth
	}
	lefts := make(map[int]int)
	rights := make(map[int]int)
	for _, l := range lines {
		lefts[l.LeftEdge()/5]++
		rights[l.RightEdge()/5]++
	}
	return max(0, 5*commonest(lefts)-5), min(maxWidth, 5*commonest(rights)+5)
}

// commonest returns the most frequent bucket, the lowest one on ties.
func commonest(buckets map[int]int) int {
	best, count := 0, -1
	for b, n := range buckets {
		if n > count || (n == count && b < best) {
			best, count = b, n
		}
	}
	return best
}

// Analyse segments page into sheet lines and groups them. Outlines whose
// line is not a staff are left out and listed in Rejected.
func Analyse(page image.Image, cfg Config) (*Sheet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sheet config: %w", err)
	}
	s := &Sheet{Bounds: page.Bounds()}
	for _, inner := range FindLineOutlines(page, cfg) {
		l := NewSheetLine(inner, page, cfg)
		if !l.IsStaff() {
			s.Rejected = append(s.Rejected, inner)
			continue
		}
		l.Index = len(s.Lines)
		s.Lines = append(s.Lines, l)
	}
	s.Left, s.Right = OverallLeftRight(s.Lines, s.Bounds.Max.X)

	gray := detection.Gray(page)
	level := cfg.Threshold
	if level == 0 {
		level = detection.OtsuLevel(gray)
	}
	for _, v := range detection.VerticalLines(gray, level, cfg.MinVerticalLength) {
		v.X += s.Bounds.Min.X
		v.Top += s.Bounds.Min.Y
		v.Bottom += s.Bounds.Min.Y
		if v.X >= s.Left && v.X <= s.Right {
			s.Verticals = append(s.Verticals, v)
		}
	}

	if cfg.Voices > 0 {
		s.Groups = chunkLines(len(s.Lines), cfg.Voices)
	} else {
		s.Groups = groupByCrossings(s.Lines, s.Verticals)
	}
	return s, nil
}

func chunkLines(n, size int) []LineGroup {
	var groups []LineGroup
	for i := 0; i < n; i += size {
		g := LineGroup{}
		for j := i; j < min(n, i+size); j++ {
			g.Lines = append(g.Lines, j)
		}
		groups = append(groups, g)
	}
	return groups
}

// groupByCrossings starts a new group when the current one is full, when the
// previous line is crossed by no vertical stroke, or when fewer than two
// strokes cross both the previous and the current line.
func groupByCrossings(lines []*SheetLine, verticals []detection.VerticalLine) []LineGroup {
	crossings := make([]map[int]bool, len(lines))
	for i, l := range lines {
		crossings[i] = make(map[int]bool)
		for j, v := range verticals {
			if l.CrossedBy(v) {
				crossings[i][j] = true
			}
		}
	}

	var groups []LineGroup
	for i := range lines {
		if i == 0 || len(groups[len(groups)-1].Lines) >= maxGroupLines ||
			len(crossings[i-1]) == 0 || shared(crossings[i-1], crossings[i]) < 2 {
			groups = append(groups, LineGroup{})
		}
		last := &groups[len(groups)-1]
		last.Lines = append(last.Lines, i)
	}
	return groups
}

func shared(a, b map[int]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}
