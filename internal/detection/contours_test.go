package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// whitePage creates a white grayscale image.
func whitePage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// fill paints r black.
func fill(img *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

// staffPage draws one pixel high lines across the whole width at rows.
func staffPage(width, height int, rows ...int) *image.Gray {
	img := whitePage(width, height)
	for _, y := range rows {
		fill(img, image.Rect(0, y, width, y+1))
	}
	return img
}

func TestGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetRGBA(12, 6, color.RGBA{100, 100, 100, 255})
	src.SetRGBA(15, 7, color.RGBA{255, 0, 0, 255})

	g := Gray(src.SubImage(image.Rect(10, 5, 20, 10)))
	if want := image.Rect(0, 0, 10, 5); g.Rect != want {
		t.Fatalf("bounds = %v, want %v", g.Rect, want)
	}

	tests := []struct {
		name string
		at   image.Point
		want uint8
	}{
		{"paper", image.Pt(0, 0), 255},
		{"gray ink", image.Pt(2, 1), 100},
		{"red ink", image.Pt(5, 2), 77},
		{"last pixel", image.Pt(9, 4), 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.GrayAt(tt.at.X, tt.at.Y).Y; got != tt.want {
				t.Errorf("GrayAt(%v) = %d, want %d", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsolateHorizontal(t *testing.T) {
	img := staffPage(100, 30, 10)
	fill(img, image.Rect(40, 20, 46, 21))

	lines := IsolateHorizontal(img, 20, 1)

	if lines.GrayAt(50, 10).Y != 0 {
		t.Error("staff line pixel should stay black")
	}
	if lines.GrayAt(42, 20).Y != 255 {
		t.Error("short stroke should be removed")
	}
}

func TestRemoveHorizontal(t *testing.T) {
	img := staffPage(100, 30, 10)
	fill(img, image.Rect(50, 5, 51, 26))
	fill(img, image.Rect(40, 20, 46, 21))

	out := RemoveHorizontal(img, 20, 1)

	tests := []struct {
		name string
		p    image.Point
		want uint8
	}{
		{"staff line", image.Pt(20, 10), 255},
		{"stem on the line", image.Pt(50, 10), 255},
		{"stem", image.Pt(50, 15), 0},
		{"short stroke", image.Pt(42, 20), 0},
		{"paper", image.Pt(5, 5), 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out.GrayAt(tt.p.X, tt.p.Y).Y; got != tt.want {
				t.Errorf("pixel %v = %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestContourBoxes(t *testing.T) {
	img := staffPage(200, 60, 20, 30, 40)
	fill(img, image.Rect(30, 22, 38, 28))   // between two lines
	fill(img, image.Rect(100, 20, 102, 41)) // bar line across the staff
	fill(img, image.Rect(150, 10, 153, 13)) // dot above the staff

	e := NewContourExtractor(ContourConfig{
		HorizontalSizeFudge: 10,
		HorizontalHeight:    1,
		Threshold:           128,
		MinPixels:           3,
	})
	got := e.ContourBoxes(img)

	// Removing the staff lines splits the bar line where it crosses them.
	want := []image.Rectangle{
		image.Rect(30, 22, 38, 28),
		image.Rect(100, 21, 102, 30),
		image.Rect(100, 31, 102, 40),
		image.Rect(150, 10, 153, 13),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ContourBoxes() mismatch (-want +got):\n%s", diff)
	}
}

func TestContourBoxesRelativeToBounds(t *testing.T) {
	page := whitePage(100, 50)
	fill(page, image.Rect(60, 30, 65, 35))
	sub := page.SubImage(image.Rect(50, 20, 100, 50))

	e := NewContourExtractor(ContourConfig{Threshold: 128, MinPixels: 1})
	got := e.ContourBoxes(sub)

	if diff := cmp.Diff([]image.Rectangle{image.Rect(10, 10, 15, 15)}, got); diff != "" {
		t.Errorf("ContourBoxes() mismatch (-want +got):\n%s", diff)
	}
}

func TestComponents(t *testing.T) {
	mask := [][]bool{
		{true, false, false, false},
		{false, true, false, true},
		{false, false, false, true},
		{false, false, false, false},
	}

	got := Components(mask, 1)
	want := []Component{
		{Bounds: image.Rect(0, 0, 2, 2), Pixels: 2},
		{Bounds: image.Rect(3, 1, 4, 3), Pixels: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}

	if got := Components(mask, 3); len(got) != 0 {
		t.Errorf("expected small components to be dropped, got %v", got)
	}
	if got := Components(nil, 1); got != nil {
		t.Errorf("Components(nil) = %v, want nil", got)
	}
}

func TestOtsuLevel(t *testing.T) {
	img := whitePage(20, 20)
	for i := range img.Pix[:200] {
		img.Pix[i] = 20
	}
	for i := 200; i < 400; i++ {
		img.Pix[i] = 220
	}

	level := OtsuLevel(img)
	if level <= 20 || level > 220 {
		t.Fatalf("OtsuLevel() = %d, want a level in (20, 220]", level)
	}
	mask := InkMask(img, level)
	if !mask[0][0] || mask[19][19] {
		t.Error("mask should separate dark from light pixels")
	}
}

func TestStaffProfile(t *testing.T) {
	img := staffPage(200, 60, 10, 18, 26, 34, 42)
	fill(img, image.Rect(60, 20, 70, 26)) // a note head between lines

	staff := StaffProfile(img, image.Rect(0, 5, 200, 50), 128, 0.5)

	want := Staff{Lines: []int{10, 18, 26, 34, 42}, Top: 10, Bottom: 43}
	if diff := cmp.Diff(want, staff); diff != "" {
		t.Errorf("StaffProfile() mismatch (-want +got):\n%s", diff)
	}
	top, bottom := staff.Coordinates()
	if top != 10 || bottom != 43 {
		t.Errorf("Coordinates() = (%d, %d), want (10, 43)", top, bottom)
	}
}

func TestStaffProfileWithoutLines(t *testing.T) {
	inner := image.Rect(0, 5, 200, 50)
	staff := StaffProfile(whitePage(200, 60), inner, 128, 0.5)
	if staff.Top != 5 || staff.Bottom != 50 || len(staff.Lines) != 0 {
		t.Errorf("StaffProfile() = %+v, want the inner box edges", staff)
	}
}

func TestVerticalLines(t *testing.T) {
	img := whitePage(200, 60)
	fill(img, image.Rect(50, 5, 52, 45))   // thick bar
	fill(img, image.Rect(80, 10, 81, 15))  // too short
	fill(img, image.Rect(120, 0, 121, 20)) // two strokes in one column
	fill(img, image.Rect(120, 30, 121, 56))

	got := VerticalLines(img, 128, 20)
	want := []VerticalLine{
		{X: 50, Top: 5, Bottom: 45},
		{X: 120, Top: 0, Bottom: 20},
		{X: 120, Top: 30, Bottom: 56},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VerticalLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewExtractor(t *testing.T) {
	img := whitePage(60, 30)
	fill(img, image.Rect(10, 10, 14, 14))

	e := NewExtractor(ContourConfig{Threshold: 128, MinPixels: 1})
	got := e.ContourBoxes(img)
	if diff := cmp.Diff([]image.Rectangle{image.Rect(10, 10, 14, 14)}, got); diff != "" {
		t.Errorf("%s backend ContourBoxes() mismatch (-want +got):\n%s", Backend, diff)
	}
}
