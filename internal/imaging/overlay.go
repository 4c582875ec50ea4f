package imaging

import (
	"image"
	"image/color"
	"image/draw"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/sheetmusic-mcp/internal/shapes"
)

// Box is a composite drawn on an overlay.
type Box struct {
	Rect image.Rectangle
	Type shapes.CompositeType
}

// Overlay describes what RenderOverlay draws on a line's viewport. All
// coordinates are relative to the viewport.
type Overlay struct {
	Inner      image.Rectangle
	StaffLines []int
	Boxes      []Box
	// Labels prints the first letter of each box's type above it.
	Labels bool
}

var (
	innerColor = color.RGBA{0, 160, 255, 255}
	staffColor = color.RGBA{120, 200, 255, 255}
)

// Palette returns the colour used for composites of type t. Hues are spread
// evenly around the colour wheel; out of range types wrap around.
func Palette(t shapes.CompositeType) color.RGBA {
	const types = int(shapes.OutOfLine) + 1
	slot := (int(t)%types + types) % types
	hue := float64(slot) * 360 / float64(types)
	r, g, b := colorful.Hsv(hue, 0.85, 0.85).Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

// RenderOverlay copies viewport and draws the inner box, the staff lines and
// every composite box on it. Boxes are drawn with a 2 pixel border in their
// type's palette colour.
func RenderOverlay(viewport image.Image, o Overlay) *image.RGBA {
	bounds := viewport.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), viewport, bounds.Min, draw.Src)

	for _, y := range o.StaffLines {
		hline(result, o.Inner.Min.X, o.Inner.Max.X, y, staffColor)
	}
	outline(result, o.Inner, 1, innerColor)

	for _, b := range o.Boxes {
		c := Palette(b.Type)
		outline(result, b.Rect, 2, c)
		if o.Labels {
			drawLabel(result, b.Rect.Min.X, b.Rect.Min.Y-2, b.Type.String()[:1], c)
		}
	}
	return result
}

func hline(img *image.RGBA, x1, x2, y int, c color.RGBA) {
	for x := x1; x < x2; x++ {
		if (image.Point{X: x, Y: y}).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
	}
}

func vline(img *image.RGBA, x, y1, y2 int, c color.RGBA) {
	for y := y1; y < y2; y++ {
		if (image.Point{X: x, Y: y}).In(img.Rect) {
			img.SetRGBA(x, y, c)
		}
	}
}

// outline draws the border of r, width pixels thick, inside r.
func outline(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	for i := 0; i < width && i < r.Dx() && i < r.Dy(); i++ {
		hline(img, r.Min.X, r.Max.X, r.Min.Y+i, c)
		hline(img, r.Min.X, r.Max.X, r.Max.Y-1-i, c)
		vline(img, r.Min.X+i, r.Min.Y, r.Max.Y, c)
		vline(img, r.Max.X-1-i, r.Min.Y, r.Max.Y, c)
	}
}

// drawLabel writes text with its baseline at (x, y), moved inside the image
// when it would be cut off.
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	y = max(y, face.Ascent)
	x = min(max(x, 0), img.Rect.Dx()-face.Advance*len(text))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
