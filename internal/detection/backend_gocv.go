//go:build gocv

package detection

// Backend names the contour extraction implementation compiled in.
const Backend = "opencv"

// NewExtractor returns the OpenCV contour extractor.
func NewExtractor(cfg ContourConfig) Extractor {
	return NewCVContourExtractor(cfg)
}
