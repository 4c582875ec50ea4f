package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 255, 255, 255})
	img.Set(20, 30, color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name       string
		r          image.Rectangle
		scale      float64
		wantWidth  int
		wantHeight int
	}{
		{"no scale", image.Rect(10, 20, 60, 40), 1.0, 50, 20},
		{"scale up", image.Rect(0, 0, 50, 50), 2.0, 100, 100},
		{"scale down", image.Rect(0, 0, 100, 100), 0.5, 50, 50},
		{"zero scale keeps size", image.Rect(0, 0, 30, 30), 0, 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crop(img, tt.r, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if got.Bounds().Min != (image.Point{}) {
				t.Errorf("bounds should start at the origin, got %v", got.Bounds())
			}
			if got.Bounds().Dx() != tt.wantWidth || got.Bounds().Dy() != tt.wantHeight {
				t.Errorf("dimensions: got %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}

	got, _ := Crop(img, image.Rect(10, 20, 60, 40), 1.0)
	if r, _, _, _ := got.At(10, 10).RGBA(); r != 0 {
		t.Error("cropped pixel should keep its colour")
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"empty", image.Rect(50, 50, 50, 60)},
		{"outside", image.Rect(90, 90, 110, 110)},
		{"negative", image.Rect(-5, 0, 10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r, 1.0); err == nil {
				t.Errorf("Crop(%v) should fail", tt.r)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	img := createInMemoryImage(40, 25, color.RGBA{0, 128, 255, 255})

	enc, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if enc.Width != 40 || enc.Height != 25 {
		t.Errorf("dimensions: got %dx%d, want 40x25", enc.Width, enc.Height)
	}
	if enc.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", enc.MimeType)
	}

	data, err := enc.Bytes()
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
