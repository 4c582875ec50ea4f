//go:build !gocv

package detection

// Backend names the contour extraction implementation compiled in.
const Backend = "go"

// NewExtractor returns the pure Go contour extractor.
func NewExtractor(cfg ContourConfig) Extractor {
	return NewContourExtractor(cfg)
}
