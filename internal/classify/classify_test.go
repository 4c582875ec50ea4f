package classify

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
)

// filledImage creates a white image with a black rectangle covering fill.
func filledImage(w, h int, fill image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (image.Point{x, y}).In(fill) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func solid(w, h int) *image.Gray {
	return filledImage(w, h, image.Rect(0, 0, w, h))
}

func TestSampleVector(t *testing.T) {
	img := solid(6, 30)
	vec := SampleVector(img, image.Pt(12, 7), 20)

	if len(vec) != 20*20+20 {
		t.Fatalf("len = %d, want %d", len(vec), 20*20+20)
	}
	row := vec[400:]
	if row[0] != 30 || row[1] != 6 || row[2] != 12 || row[3] != 7 {
		t.Errorf("size row = %v, want [30 6 12 7 ...]", row[:4])
	}
	for i, v := range row[4:] {
		if v != 0 {
			t.Errorf("size row[%d] = %v, want 0", i+4, v)
		}
	}
	if vec[0] != 0 {
		t.Errorf("black pixel = %v, want 0", vec[0])
	}
}

func TestSampleVectorEmpty(t *testing.T) {
	vec := SampleVector(image.NewGray(image.Rect(0, 0, 0, 0)), image.Point{}, 2)
	if len(vec) != 4*4+4 {
		t.Fatalf("len = %d, want %d", len(vec), 20)
	}
}

func TestKNNEmpty(t *testing.T) {
	m := NewKNN(3, 8)
	if _, err := m.Classify(make([]float64, 8*8+8)); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Classify() error = %v, want ErrNoSamples", err)
	}
	if got := m.Predict(solid(4, 4), image.Point{}); got != 0 {
		t.Errorf("Predict() = %d, want 0", got)
	}
}

func TestKNNPredict(t *testing.T) {
	m := NewKNN(3, 8)
	dot := solid(4, 4)
	stem := solid(2, 40)

	m.Add(dot, image.Pt(10, 30), 'd')
	m.Add(filledImage(5, 5, image.Rect(0, 0, 4, 4)), image.Pt(12, 30), 'd')
	m.Add(solid(5, 4), image.Pt(14, 31), 'd')
	m.Add(stem, image.Pt(100, 20), 'l')
	m.Add(solid(3, 42), image.Pt(120, 18), 'l')

	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}

	tests := []struct {
		name   string
		sample image.Image
		at     image.Point
		want   int
	}{
		{"dot", solid(4, 5), image.Pt(11, 30), 'd'},
		{"stem", solid(2, 41), image.Pt(110, 19), 'l'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Predict(tt.sample, tt.at); got != tt.want {
				t.Errorf("Predict() = %c, want %c", got, tt.want)
			}
		})
	}
}

func TestKNNTieGoesToNearest(t *testing.T) {
	m := NewKNN(2, 4)
	m.samples = [][]float64{{0, 0}, {10, 0}}
	m.labels = []int{7, 3}

	got, err := m.Classify([]float64{2, 0})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != 7 {
		t.Errorf("Classify() = %d, want 7", got)
	}

	got, _ = m.Classify([]float64{5, 0})
	if got != 3 {
		t.Errorf("equidistant Classify() = %d, want 3", got)
	}
}

func TestHeuristicPredict(t *testing.T) {
	h := DefaultHeuristic()
	tests := []struct {
		name   string
		sample image.Image
		want   shapes.TopLevelCategory
	}{
		{"stem", solid(2, 40), shapes.VLine},
		{"beam", solid(30, 4), shapes.HLine},
		{"note head", solid(10, 8), shapes.Round},
		{"hollow square", filledImage(10, 10, image.Rect(0, 0, 10, 1)), shapes.Composite},
		{"large blob", solid(40, 40), shapes.Composite},
		{"empty", image.NewGray(image.Rect(0, 0, 0, 0)), shapes.TopLevelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shapes.TopLevelFromCode(h.Predict(tt.sample, image.Point{}))
			if got != tt.want {
				t.Errorf("Predict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInkRatio(t *testing.T) {
	img := filledImage(10, 10, image.Rect(0, 0, 10, 5))
	if got := InkRatio(img, 128); got != 0.5 {
		t.Errorf("InkRatio() = %v, want 0.5", got)
	}
}
