package detection

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"
)

// ContourConfig controls how ink blobs are separated from a line image.
type ContourConfig struct {
	// BlurRadius is the radius of the Gaussian blur applied before
	// thresholding. 0 disables blurring.
	BlurRadius float64 `yaml:"blur_radius"`
	// HorizontalSizeFudge divides the image width to get the length of the
	// strokes removed as staff lines. 0 keeps the staff lines.
	HorizontalSizeFudge int `yaml:"horizontal_size_fudge"`
	// HorizontalHeight is the thickness of the removed strokes.
	HorizontalHeight int `yaml:"horizontal_height"`
	// Threshold is the gray level below which a pixel is ink. 0 picks the
	// level with Otsu's method.
	Threshold uint8 `yaml:"threshold"`
	// MinPixels drops components with fewer ink pixels.
	MinPixels int `yaml:"min_pixels"`
}

// DefaultContourConfig returns the settings used for scanned sheet music.
func DefaultContourConfig() ContourConfig {
	return ContourConfig{
		BlurRadius:          0.5,
		HorizontalSizeFudge: 30,
		HorizontalHeight:    1,
		MinPixels:           3,
	}
}

// Extractor finds the bounding boxes of ink blobs. Both ContourExtractor and
// the OpenCV backend implement it; it matches shapes.ContourExtractor.
type Extractor interface {
	ContourBoxes(img image.Image) []image.Rectangle
}

// ContourExtractor finds the bounding boxes of ink blobs in a sheet line's
// viewport. It implements shapes.ContourExtractor.
type ContourExtractor struct {
	cfg ContourConfig
}

// NewContourExtractor creates a pure Go extractor.
func NewContourExtractor(cfg ContourConfig) *ContourExtractor {
	return &ContourExtractor{cfg: cfg}
}

// ContourBoxes returns one box per 8-connected ink component, relative to
// img's bounds and sorted by Min.X, then Min.Y.
//
// # Algorithm
//
//  1. Staff line removal: long horizontal strokes are whitened
//     (RemoveHorizontal) so notes on a line separate from each other
//  2. Blur: a light Gaussian blur closes one-pixel gaps inside glyphs
//  3. Threshold: fixed level or Otsu's method
//  4. Components: flood fill over the ink mask, boxes of components with at
//     least MinPixels pixels
func (e *ContourExtractor) ContourBoxes(img image.Image) []image.Rectangle {
	gray := Gray(img)
	if gray.Rect.Empty() {
		return nil
	}
	if e.cfg.HorizontalSizeFudge > 0 {
		gray = RemoveHorizontal(gray, gray.Rect.Dx()/e.cfg.HorizontalSizeFudge, e.cfg.HorizontalHeight)
	}
	if e.cfg.BlurRadius > 0 {
		gray = Gray(blur.Gaussian(gray, e.cfg.BlurRadius))
	}
	level := e.cfg.Threshold
	if level == 0 {
		level = OtsuLevel(gray)
	}

	comps := Components(InkMask(gray, level), e.cfg.MinPixels)
	boxes := make([]image.Rectangle, len(comps))
	for i, c := range comps {
		boxes[i] = c.Bounds
	}
	SortLeft(boxes)
	return boxes
}

// SortLeft sorts boxes by Min.X, then Min.Y, keeping the order of equal boxes.
func SortLeft(boxes []image.Rectangle) {
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Min.X != boxes[j].Min.X {
			return boxes[i].Min.X < boxes[j].Min.X
		}
		return boxes[i].Min.Y < boxes[j].Min.Y
	})
}

// Component is a connected group of ink pixels.
type Component struct {
	Bounds image.Rectangle
	Pixels int
}

// Components labels the 8-connected regions of mask and returns those with
// at least minPixels pixels, in scan order.
func Components(mask [][]bool, minPixels int) []Component {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])
	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var comps []Component
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] && !visited[y][x] {
				c := floodFill(mask, visited, x, y, width, height)
				if c.Pixels >= minPixels {
					comps = append(comps, c)
				}
			}
		}
	}
	return comps
}

// floodFill grows one component from (startX, startY) with an explicit stack.
func floodFill(mask, visited [][]bool, startX, startY, width, height int) Component {
	stack := []image.Point{{X: startX, Y: startY}}
	bounds := image.Rect(startX, startY, startX+1, startY+1)
	pixels := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !mask[p.Y][p.X] {
			continue
		}
		visited[p.Y][p.X] = true
		pixels++
		bounds = bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return Component{Bounds: bounds, Pixels: pixels}
}
