package detection

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Staff describes the staff lines found inside a sheet line's inner box.
type Staff struct {
	// Lines holds the middle row of every staff line, top to bottom.
	Lines []int `json:"lines"`
	// Top is the first row of the top line.
	Top int `json:"top"`
	// Bottom is one past the last row of the bottom line.
	Bottom int `json:"bottom"`
}

// Coordinates returns the rows bounding the staff.
func (s Staff) Coordinates() (top, bottom int) { return s.Top, s.Bottom }

// StaffProfile finds the staff lines of gray within inner from its horizontal
// ink projection. A row belongs to a line when its ink fraction is at least
// minFraction and above the midpoint between the mean and the maximum
// fraction. Rows of one line are merged. Without lines the inner box's own
// edges are returned.
func StaffProfile(gray *image.Gray, inner image.Rectangle, level uint8, minFraction float64) Staff {
	inner = inner.Intersect(gray.Rect)
	staff := Staff{Top: inner.Min.Y, Bottom: inner.Max.Y}
	if inner.Empty() {
		return staff
	}

	fractions := make([]float64, inner.Dy())
	peak := 0.0
	for y := inner.Min.Y; y < inner.Max.Y; y++ {
		ink := 0
		for x := inner.Min.X; x < inner.Max.X; x++ {
			if gray.GrayAt(x, y).Y < level {
				ink++
			}
		}
		f := float64(ink) / float64(inner.Dx())
		fractions[y-inner.Min.Y] = f
		peak = max(peak, f)
	}
	mean := stat.Mean(fractions, nil)
	cut := max(minFraction, mean+(peak-mean)/2)

	first, last := -1, -1
	start := -1
	for i := 0; i <= len(fractions); i++ {
		on := i < len(fractions) && fractions[i] >= cut
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			staff.Lines = append(staff.Lines, inner.Min.Y+(start+i-1)/2)
			if first < 0 {
				first = start
			}
			last = i
			start = -1
		}
	}
	if first >= 0 {
		staff.Top = inner.Min.Y + first
		staff.Bottom = inner.Min.Y + last
	}
	return staff
}

// VerticalLine is a vertical ink stroke.
type VerticalLine struct {
	X      int `json:"x"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// VerticalLines finds vertical strokes at least minLength pixels long.
// Runs in neighbouring columns that overlap are merged into one line at the
// left-most column. Lines are returned by X, then Top.
func VerticalLines(gray *image.Gray, level uint8, minLength int) []VerticalLine {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	var done, active []VerticalLine

	for x := 0; x < w; x++ {
		var runs []VerticalLine
		start := -1
		for y := 0; y <= h; y++ {
			ink := y < h && gray.Pix[y*gray.Stride+x] < level
			switch {
			case ink && start < 0:
				start = y
			case !ink && start >= 0:
				if y-start >= minLength {
					runs = append(runs, VerticalLine{X: x, Top: start, Bottom: y})
				}
				start = -1
			}
		}

		var next []VerticalLine
		used := make([]bool, len(runs))
		for _, a := range active {
			merged := false
			for j, r := range runs {
				if used[j] || r.Top >= a.Bottom || r.Bottom <= a.Top {
					continue
				}
				a.Top = min(a.Top, r.Top)
				a.Bottom = max(a.Bottom, r.Bottom)
				used[j] = true
				merged = true
			}
			if merged {
				next = append(next, a)
			} else {
				done = append(done, a)
			}
		}
		for j, r := range runs {
			if !used[j] {
				next = append(next, r)
			}
		}
		active = next
	}
	done = append(done, active...)

	for i := range done {
		done[i].X += gray.Rect.Min.X
		done[i].Top += gray.Rect.Min.Y
		done[i].Bottom += gray.Rect.Min.Y
	}
	sort.Slice(done, func(i, j int) bool {
		if done[i].X != done[j].X {
			return done[i].X < done[j].X
		}
		return done[i].Top < done[j].Top
	})
	return done
}
