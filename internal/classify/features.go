package classify

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultSampleSize is the side of the square samples are scaled to.
const DefaultSampleSize = 20

// SampleVector flattens img into a feature vector of size*size grayscale
// values followed by the size row [rows, cols, x, y, 0, ...]. at is the
// blob's position in the line viewport. A size below 4 is raised to 4 so the
// size row fits.
func SampleVector(img image.Image, at image.Point, size int) []float64 {
	if size < 4 {
		size = 4
	}
	b := img.Bounds()
	vec := make([]float64, size*size+size)

	if !b.Empty() {
		scaled := imaging.Resize(imaging.Grayscale(img), size, size, imaging.Linear)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				// Grayscale leaves R, G and B equal.
				vec[y*size+x] = float64(scaled.Pix[y*scaled.Stride+x*4])
			}
		}
	}

	row := vec[size*size:]
	row[0] = float64(b.Dy())
	row[1] = float64(b.Dx())
	row[2] = float64(at.X)
	row[3] = float64(at.Y)
	return vec
}
