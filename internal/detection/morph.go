package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
)

// Gray converts img to an 8-bit grayscale image whose bounds start at (0, 0).
//
// bild returns the luminance replicated in the R, G and B bytes of an RGBA
// image; the R byte of each pixel becomes the gray value.
func Gray(img image.Image) *image.Gray {
	g := effect.Grayscale(img)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range dst {
			dst[x] = src[4*x]
		}
	}
	return out
}

// IsolateHorizontal keeps only dark strokes at least width pixels long and
// height pixels tall, such as staff lines; everything else turns white.
//
// It is a morphological closing of the paper (a dilation followed by an
// erosion with a width x height rectangle), which on dark-on-light images
// erases every ink run shorter than the rectangle.
func IsolateHorizontal(gray *image.Gray, width, height int) *image.Gray {
	return Erode(Dilate(gray, width, height), width, height)
}

// Dilate spreads the paper: every pixel takes the lightest value of the
// width x height rectangle around it.
func Dilate(gray *image.Gray, width, height int) *image.Gray {
	return rectFilter(gray, width, height, maxOf)
}

// Erode spreads the ink: every pixel takes the darkest value of the
// width x height rectangle around it.
func Erode(gray *image.Gray, width, height int) *image.Gray {
	return rectFilter(gray, width, height, minOf)
}

// RemoveHorizontal whitens the long horizontal strokes of gray, leaving notes,
// stems and text. It computes gray + ^IsolateHorizontal(gray), saturating.
func RemoveHorizontal(gray *image.Gray, width, height int) *image.Gray {
	lines := IsolateHorizontal(gray, width, height)
	out := image.NewGray(gray.Rect)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(gray.Pix[y*gray.Stride+x]) + 255 - int(lines.Pix[y*lines.Stride+x])
			out.Pix[y*out.Stride+x] = uint8(min(v, 255))
		}
	}
	return out
}

func maxOf(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// rectFilter applies a separable width x height rank filter centred on each
// pixel. Pixels outside the image are ignored.
func rectFilter(src *image.Gray, width, height int, pick func(a, b uint8) uint8) *image.Gray {
	width, height = max(1, width), max(1, height)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	horiz := image.NewGray(src.Rect)
	left, right := (width-1)/2, width/2
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			v := row[x]
			for k := max(0, x-left); k <= min(w-1, x+right); k++ {
				v = pick(v, row[k])
			}
			horiz.Pix[y*horiz.Stride+x] = v
		}
	}
	if height == 1 {
		return horiz
	}

	out := image.NewGray(src.Rect)
	up, down := (height-1)/2, height/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := horiz.Pix[y*horiz.Stride+x]
			for k := max(0, y-up); k <= min(h-1, y+down); k++ {
				v = pick(v, horiz.Pix[k*horiz.Stride+x])
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}

// OtsuLevel returns the gray level that best separates ink from paper.
func OtsuLevel(gray *image.Gray) uint8 {
	hist := histogram.NewRGBAHistogram(gray)
	bins := hist.R.Bins

	total := 0
	sum := 0.0
	for i, n := range bins {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 128
	}

	var (
		sumBack    float64
		weightBack int
		best       float64
		level      int
	)
	for t := 0; t < len(bins); t++ {
		weightBack += bins[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * bins[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		between := float64(weightBack) * float64(weightFore) * math.Pow(meanBack-meanFore, 2)
		if between > best {
			best = between
			level = t
		}
	}
	// Pixels strictly darker than the returned level are ink.
	return uint8(min(level+1, 255))
}

// InkMask marks pixels darker than level.
func InkMask(gray *image.Gray, level uint8) [][]bool {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	mask := make([][]bool, h)
	for y := 0; y < h; y++ {
		mask[y] = make([]bool, w)
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x, p := range row {
			mask[y][x] = p < level
		}
	}
	return mask
}
