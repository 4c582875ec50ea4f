package detection

import (
	"image"
	"math"
	"sort"
)

// Segment is a straight ink segment from (X1, Y1) to (X2, Y2), X1 <= X2.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns the horizontal extent of the segment.
func (s Segment) Width() int { return s.X2 - s.X1 }

// Slope returns dy/dx; positive slopes descend to the right. A segment of
// zero width has slope 0.
func (s Segment) Slope() float64 {
	if s.Width() == 0 {
		return 0
	}
	return float64(s.Y2-s.Y1) / float64(s.Width())
}

// yAt returns the segment's row at column x, extending it if needed.
func (s Segment) yAt(x int) float64 {
	return float64(s.Y1) + s.Slope()*float64(x-s.X1)
}

const (
	// houghStep is the angular resolution in degrees.
	houghStep = 0.25
	// traceDistance is how far an ink pixel may lie from a peak's line and
	// still belong to its segment.
	traceDistance = 2.0
	// maxGap is the widest break, in pixels, inside one segment.
	maxGap      = 5.0
	maxSegments = 64
)

// HorizontalSegments finds straight ink segments of mask that lie inside
// area and are within maxAngle degrees of horizontal, using Hough voting.
// Segments shorter than minLength pixels are dropped; segments that retrace
// an earlier, stronger one are dropped. The result is sorted by Y1,
// then X1, in mask coordinates.
//
// # Algorithm
//
//  1. Every ink pixel in area votes for all lines through it with normal
//     angle theta in [90-maxAngle, 90+maxAngle] degrees
//  2. Accumulator cells with at least minLength votes that are local
//     maxima over a 5 x 5 neighbourhood are peaks
//  3. Each peak, strongest first, collects the ink pixels within 2 pixels
//     of its line and splits them at breaks wider than 5 pixels; the end
//     pixels of each run are a segment's endpoints
func HorizontalSegments(mask [][]bool, area image.Rectangle, minLength int, maxAngle float64) []Segment {
	if len(mask) == 0 || minLength <= 0 {
		return nil
	}
	area = area.Intersect(image.Rect(0, 0, len(mask[0]), len(mask)))
	if area.Empty() {
		return nil
	}

	var points []image.Point
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if mask[y][x] {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	if len(points) < minLength {
		return nil
	}

	numAngles := int(2*maxAngle/houghStep) + 1
	sins := make([]float64, numAngles)
	coss := make([]float64, numAngles)
	for t := range numAngles {
		angle := (90 - maxAngle + float64(t)*houghStep) * math.Pi / 180
		sins[t], coss[t] = math.Sincos(angle)
		if math.Abs(coss[t]) < 1e-12 {
			coss[t] = 0
		}
	}

	// Vote in Hough space
	maxDist := int(math.Ceil(math.Hypot(float64(area.Max.X), float64(area.Max.Y))))
	numRhos := 2*maxDist + 1
	acc := make([]int, numAngles*numRhos)
	for _, p := range points {
		for t := range numAngles {
			rho := float64(p.X)*coss[t] + float64(p.Y)*sins[t]
			acc[t*numRhos+int(math.Round(rho))+maxDist]++
		}
	}

	// Find peaks in accumulator
	type peak struct {
		theta, rho, votes int
	}
	var peaks []peak
	for t := range numAngles {
		for r := range numRhos {
			votes := acc[t*numRhos+r]
			if votes < minLength {
				continue
			}
			isMax := true
			for dt := -2; dt <= 2 && isMax; dt++ {
				for dr := -2; dr <= 2 && isMax; dr++ {
					nt, nr := t+dt, r+dr
					if nt < 0 || nt >= numAngles || nr < 0 || nr >= numRhos {
						continue
					}
					if acc[nt*numRhos+nr] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{theta: t, rho: r - maxDist, votes: votes})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })

	// Convert peaks to segments
	var segments []Segment
	for _, pk := range peaks {
		if len(segments) >= maxSegments {
			break
		}
		for _, s := range traceRuns(points, sins[pk.theta], coss[pk.theta], float64(pk.rho)) {
			if s.Width()+1 < minLength || retraces(segments, s) {
				continue
			}
			segments = append(segments, s)
		}
	}

	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Y1 != segments[j].Y1 {
			return segments[i].Y1 < segments[j].Y1
		}
		return segments[i].X1 < segments[j].X1
	})
	return segments
}

type linePoint struct {
	p     image.Point
	along float64
}

// traceRuns collects the points within traceDistance of the line
// x*cos + y*sin = rho and splits them where consecutive points are more than
// maxGap apart along the line. Each run becomes a segment between its first
// and last points; among points tied at the far end the first found wins, so
// a level stroke yields a level segment.
func traceRuns(points []image.Point, sin, cos, rho float64) []Segment {
	var on []linePoint
	for _, p := range points {
		if math.Abs(float64(p.X)*cos+float64(p.Y)*sin-rho) >= traceDistance {
			continue
		}
		// Position along the line, increasing to the right.
		on = append(on, linePoint{p, float64(p.X)*sin - float64(p.Y)*cos})
	}
	sort.SliceStable(on, func(i, j int) bool { return on[i].along < on[j].along })

	var segments []Segment
	for start := 0; start < len(on); {
		end := start
		for end+1 < len(on) && on[end+1].along-on[end].along <= maxGap {
			end++
		}
		last := end
		for last > start && on[last-1].along == on[end].along {
			last--
		}
		a, b := on[start].p, on[last].p
		segments = append(segments, Segment{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y})
		start = end + 1
	}
	return segments
}

// retraces reports whether s overlaps one of segments horizontally and runs
// within traceDistance of it at its own midpoint.
func retraces(segments []Segment, s Segment) bool {
	mid := (s.X1 + s.X2) / 2
	for _, o := range segments {
		if s.X2 < o.X1 || s.X1 > o.X2 {
			continue
		}
		if math.Abs(o.yAt(mid)-s.yAt(mid)) <= traceDistance {
			return true
		}
	}
	return false
}

// WeightedSlope returns the average slope of segments weighted by their
// widths. It is 0 when the segments cover no more than 10 pixels in total.
func WeightedSlope(segments []Segment) float64 {
	total, weighted := 0, 0.0
	for _, s := range segments {
		total += s.Width()
		weighted += float64(s.Width()) * s.Slope()
	}
	if total <= 10 {
		return 0
	}
	return weighted / float64(total)
}
