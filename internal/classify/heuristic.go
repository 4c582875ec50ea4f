package classify

import (
	"image"

	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
)

// Heuristic is a coarse classifier that needs no training. It decides from
// the blob's aspect ratio, area and ink coverage:
//
//   - at least LineAspect times taller than wide: vertical line
//   - at least LineAspect times wider than tall: horizontal line
//   - roughly square, no larger than MaxRoundArea and at least MinRoundInk
//     covered: round
//   - anything else: composite
type Heuristic struct {
	// Threshold is the gray level below which a pixel counts as ink.
	Threshold uint8 `yaml:"threshold"`
	// LineAspect is the side ratio from which a blob is a line.
	LineAspect int `yaml:"line_aspect"`
	// MaxRoundArea is the largest area of a round blob.
	MaxRoundArea int `yaml:"max_round_area"`
	// MinRoundInk is the smallest ink fraction of a round blob.
	MinRoundInk float64 `yaml:"min_round_ink"`
}

// DefaultHeuristic returns thresholds suited to dark ink on light paper.
func DefaultHeuristic() Heuristic {
	return Heuristic{
		Threshold:    128,
		LineAspect:   3,
		MaxRoundArea: 400,
		MinRoundInk:  0.4,
	}
}

// Predict implements shapes.Classifier, returning a TopLevelCategory code.
func (h Heuristic) Predict(sample image.Image, _ image.Point) int {
	b := sample.Bounds()
	w, ht := b.Dx(), b.Dy()
	if w <= 0 || ht <= 0 {
		return int(shapes.TopLevelUnknown)
	}

	switch {
	case ht >= h.LineAspect*w:
		return int(shapes.VLine)
	case w >= h.LineAspect*ht:
		return int(shapes.HLine)
	}

	if w*ht <= h.MaxRoundArea && 2*w >= ht && 2*ht >= w && InkRatio(sample, h.Threshold) >= h.MinRoundInk {
		return int(shapes.Round)
	}
	return int(shapes.Composite)
}

// InkRatio returns the fraction of pixels darker than threshold.
func InkRatio(img image.Image, threshold uint8) float64 {
	bw := segment.Threshold(img, threshold)
	if len(bw.Pix) == 0 {
		return 0
	}
	ink := 0
	for _, p := range bw.Pix {
		if p == 0 {
			ink++
		}
	}
	return float64(ink) / float64(len(bw.Pix))
}
