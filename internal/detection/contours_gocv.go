//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// CVContourExtractor is a ContourExtractor backed by OpenCV. It needs the
// gocv build tag and an installed OpenCV.
type CVContourExtractor struct {
	cfg ContourConfig
}

// NewCVContourExtractor creates an extractor backed by OpenCV.
func NewCVContourExtractor(cfg ContourConfig) *CVContourExtractor {
	return &CVContourExtractor{cfg: cfg}
}

// ContourBoxes mirrors ContourExtractor.ContourBoxes with OpenCV primitives:
// rectangular dilate/erode to isolate staff lines, saturating add of the
// inverse to remove them, inverse Otsu threshold, Gaussian blur, then the
// bounding box of every contour. MinPixels applies to contour points here.
func (e *CVContourExtractor) ContourBoxes(img image.Image) []image.Rectangle {
	gray := Gray(img)
	if gray.Rect.Empty() {
		return nil
	}
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil
	}
	defer src.Close()

	processed := src.Clone()
	defer processed.Close()

	if e.cfg.HorizontalSizeFudge > 0 {
		width := max(1, gray.Rect.Dx()/e.cfg.HorizontalSizeFudge)
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: width, Y: max(1, e.cfg.HorizontalHeight)})
		defer kernel.Close()

		lines := gocv.NewMat()
		defer lines.Close()
		gocv.Dilate(src, &lines, kernel)
		gocv.Erode(lines, &lines, kernel)
		gocv.BitwiseNot(lines, &lines)
		gocv.Add(src, lines, &processed)
	}

	binary := gocv.NewMat()
	defer binary.Close()
	if e.cfg.Threshold == 0 {
		gocv.Threshold(processed, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	} else {
		gocv.Threshold(processed, &binary, float32(e.cfg.Threshold)-1, 255, gocv.ThresholdBinaryInv)
	}

	if e.cfg.BlurRadius > 0 {
		k := 2*int(e.cfg.BlurRadius+0.5) + 1
		gocv.GaussianBlur(binary, &binary, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)
	}

	contours := gocv.FindContours(binary, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() < e.cfg.MinPixels {
			continue
		}
		boxes = append(boxes, gocv.BoundingRect(contour))
	}
	SortLeft(boxes)
	return boxes
}
