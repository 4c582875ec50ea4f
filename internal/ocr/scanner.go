package ocr

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ErrEmptyImage is returned when there is nothing to read.
var ErrEmptyImage = errors.New("image is empty")

// DefaultLanguage is used when a Scanner has no language set.
const DefaultLanguage = "eng"

// upscale is the factor applied before recognition. Chord symbols and tempo
// words are small; Tesseract reads them far better at twice the size.
const upscale = 2

// Scanner reads text from parts of a sheet line: chord names, tempo and
// expression words, lyrics.
type Scanner struct {
	// Language is the Tesseract language code, e.g. "eng" or "deu". The
	// language data must be installed.
	Language string `yaml:"language"`
	// TessdataPrefix overrides the directory Tesseract loads language data
	// from.
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// NewScanner returns a scanner for language, or DefaultLanguage when empty.
func NewScanner(language string) *Scanner {
	if language == "" {
		language = DefaultLanguage
	}
	return &Scanner{Language: language}
}

// Text is the text found in one region.
type Text struct {
	Rect image.Rectangle `json:"rect"`
	Text string          `json:"text"`
	// Confidence is the mean word confidence, 0 to 1.
	Confidence float64 `json:"confidence"`
}

// Read returns the text in img.
func (s *Scanner) Read(img image.Image) (string, error) {
	if img.Bounds().Empty() {
		return "", ErrEmptyImage
	}
	client, err := s.client()
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, _, err := read(client, img)
	return text, err
}

// ReadComposites reads every rectangle of viewport, given relative to the
// viewport's bounds. Rectangles outside the viewport and regions without text
// are left out of the result.
func (s *Scanner) ReadComposites(viewport image.Image, rects []image.Rectangle) ([]Text, error) {
	origin := viewport.Bounds().Min
	var regions []image.Rectangle
	for _, r := range rects {
		if !r.Add(origin).Intersect(viewport.Bounds()).Empty() {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil, nil
	}

	client, err := s.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var texts []Text
	for _, r := range regions {
		crop := imaging.Crop(viewport, r.Add(origin))
		text, confidence, err := read(client, crop)
		if err != nil {
			return nil, fmt.Errorf("region %v: %w", r, err)
		}
		if text == "" {
			continue
		}
		texts = append(texts, Text{Rect: r, Text: text, Confidence: confidence})
	}
	return texts, nil
}

func (s *Scanner) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if s.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(s.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	language := s.Language
	if language == "" {
		language = DefaultLanguage
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// read upscales img, writes it to a temporary PNG (Tesseract needs a file
// path) and recognizes it.
func read(client *gosseract.Client, img image.Image) (string, float64, error) {
	b := img.Bounds()
	if b.Empty() {
		return "", 0, ErrEmptyImage
	}
	scaled := imaging.Resize(img, b.Dx()*upscale, b.Dy()*upscale, imaging.Lanczos)

	tmpFile, err := os.CreateTemp("", "ocr-region-*.png")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, scaled); err != nil {
		tmpFile.Close()
		return "", 0, fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	if err := client.SetImage(tmpPath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, nil
	}

	// Word boxes only feed the confidence; their failure keeps the text.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return text, 0, nil
	}
	var sum float64
	var words int
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		sum += float64(box.Confidence) / 100.0
		words++
	}
	if words == 0 {
		return text, 0, nil
	}
	return text, sum / float64(words), nil
}
