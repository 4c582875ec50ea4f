package detection

import (
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newMask returns an all-paper mask.
func newMask(width, height int) [][]bool {
	mask := make([][]bool, height)
	for y := range mask {
		mask[y] = make([]bool, width)
	}
	return mask
}

// drawRow marks row y from x0 to x1 inclusive.
func drawRow(mask [][]bool, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		mask[y][x] = true
	}
}

func TestHorizontalSegmentsLevel(t *testing.T) {
	mask := newMask(100, 40)
	drawRow(mask, 10, 10, 89)
	drawRow(mask, 30, 5, 94)

	got := HorizontalSegments(mask, image.Rect(0, 0, 100, 40), 20, 10)
	want := []Segment{
		{X1: 10, Y1: 10, X2: 89, Y2: 10},
		{X1: 5, Y1: 30, X2: 94, Y2: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HorizontalSegments() mismatch (-want +got):\n%s", diff)
	}
	if s := WeightedSlope(got); s != 0 {
		t.Errorf("WeightedSlope() = %g, want 0", s)
	}
}

func TestHorizontalSegmentsSkewed(t *testing.T) {
	const slope = 0.05
	mask := newMask(200, 60)
	for x := range 200 {
		mask[20+int(math.Round(slope*float64(x)))][x] = true
	}

	got := HorizontalSegments(mask, image.Rect(0, 0, 200, 60), 20, 10)
	if len(got) == 0 {
		t.Fatal("no segments found")
	}
	for _, s := range got {
		if math.Abs(s.Slope()-slope) > 0.005 {
			t.Errorf("segment %+v has slope %g, want about %g", s, s.Slope(), slope)
		}
	}
	if s := WeightedSlope(got); math.Abs(s-slope) > 0.005 {
		t.Errorf("WeightedSlope() = %g, want about %g", s, slope)
	}
}

func TestHorizontalSegmentsIgnored(t *testing.T) {
	tests := []struct {
		name string
		draw func(mask [][]bool)
		area image.Rectangle
	}{
		{
			name: "short strokes on one row",
			draw: func(mask [][]bool) {
				for x := 0; x < 100; x += 20 {
					drawRow(mask, 20, x, x+9)
				}
			},
			area: image.Rect(0, 0, 100, 60),
		},
		{
			name: "vertical stroke",
			draw: func(mask [][]bool) {
				for y := range 60 {
					mask[y][50] = true
				}
			},
			area: image.Rect(0, 0, 100, 60),
		},
		{
			name: "outside the area",
			draw: func(mask [][]bool) { drawRow(mask, 50, 0, 99) },
			area: image.Rect(0, 0, 100, 40),
		},
		{
			name: "empty",
			draw: func([][]bool) {},
			area: image.Rect(0, 0, 100, 60),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := newMask(100, 60)
			tt.draw(mask)
			if got := HorizontalSegments(mask, tt.area, 20, 10); len(got) != 0 {
				t.Errorf("HorizontalSegments() = %+v, want none", got)
			}
		})
	}
}

func TestWeightedSlope(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{"none", nil, 0},
		{"too narrow", []Segment{{X1: 0, Y1: 0, X2: 10, Y2: 5}}, 0},
		{"single", []Segment{{X1: 0, Y1: 0, X2: 100, Y2: 10}}, 0.1},
		{"weighted", []Segment{
			{X1: 0, Y1: 0, X2: 100, Y2: 10},
			{X1: 0, Y1: 20, X2: 300, Y2: 20},
		}, 0.025},
		{"rising", []Segment{{X1: 0, Y1: 40, X2: 200, Y2: 30}}, -0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedSlope(tt.segments); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WeightedSlope() = %g, want %g", got, tt.want)
			}
		})
	}
}
