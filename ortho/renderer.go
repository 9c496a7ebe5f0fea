package ortho

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default raster preview settings.
const (
	DefaultPreviewScale       = 4.0
	DefaultPreviewPadding     = 24
	DefaultPreviewGridSpacing = 10.0
)

// entityPalette returns distinct stroke colors cycled across output entities
func entityPalette() []color.RGBA {
	return []color.RGBA{
		{0, 0, 139, 255},    // dark blue
		{139, 0, 0, 255},    // dark red
		{0, 100, 0, 255},    // dark green
		{184, 134, 11, 255}, // dark goldenrod
	}
}

// PreviewRenderer renders an input document and its orthogonalized output
// into a single raster image: input outlines in grey underneath, output
// outlines in per-entity colors on top, with a coordinate grid and entity
// labels.
type PreviewRenderer struct {
	Input  *Document
	Output *Document

	Scale       float64 // pixels per input unit
	Padding     int     // padding around the image in pixels
	GridSpacing float64 // grid line spacing in input units; 0 disables
	ShowLabels  bool
}

// NewPreviewRenderer creates a renderer with default settings
func NewPreviewRenderer(input, output *Document) *PreviewRenderer {
	return &PreviewRenderer{
		Input:       input,
		Output:      output,
		Scale:       DefaultPreviewScale,
		Padding:     DefaultPreviewPadding,
		GridSpacing: DefaultPreviewGridSpacing,
		ShowLabels:  true,
	}
}

// CalculateBounds returns the world-space bounding box over both documents
func (r *PreviewRenderer) CalculateBounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	expand := func(doc *Document) {
		if doc == nil {
			return
		}
		for _, e := range doc.Entities {
			for _, p := range e.Points {
				if !p.IsFinite() {
					continue
				}
				if p.X < minX {
					minX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y > maxY {
					maxY = p.Y
				}
			}
		}
	}
	expand(r.Input)
	expand(r.Output)

	if minX > maxX {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}

// HasDrawableContent reports whether either document contains at least one
// entity with 2 or more points
func (r *PreviewRenderer) HasDrawableContent() bool {
	for _, doc := range []*Document{r.Input, r.Output} {
		if doc == nil {
			continue
		}
		for _, e := range doc.Entities {
			if len(e.Points) >= 2 {
				return true
			}
		}
	}
	return false
}

// Render draws both documents into a new RGBA image
func (r *PreviewRenderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := r.CalculateBounds()

	scale := r.Scale
	if scale <= 0 {
		scale = DefaultPreviewScale
	}

	width := int((maxX-minX)*scale) + 2*r.Padding
	height := int((maxY-minY)*scale) + 2*r.Padding
	if width < 2*r.Padding+1 {
		width = 2*r.Padding + 1
	}
	if height < 2*r.Padding+1 {
		height = 2*r.Padding + 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, color.RGBA{255, 255, 255, 255})

	// World-to-pixel transform. Y flips so larger Y is up in the image.
	toPixel := func(p Point) (int, int) {
		px := int((p.X-minX)*scale) + r.Padding
		py := height - 1 - (int((p.Y-minY)*scale) + r.Padding)
		return px, py
	}

	if r.GridSpacing > 0 {
		r.drawGrid(img, minX, minY, maxX, maxY, toPixel)
	}

	// Input underneath in light grey.
	if r.Input != nil {
		grey := color.RGBA{190, 190, 190, 255}
		for _, e := range r.Input.Entities {
			drawPolyline(img, e.Points, e.Closed, grey, toPixel)
		}
	}

	// Output on top, colors cycling per entity.
	if r.Output != nil {
		palette := entityPalette()
		for i, e := range r.Output.Entities {
			c := palette[i%len(palette)]
			drawPolyline(img, e.Points, e.Closed, c, toPixel)

			if r.ShowLabels && e.ID != "" && len(e.Points) > 0 {
				px, py := toPixel(e.Points[0])
				drawText(img, px+4, py-4, e.ID, c)
			}
		}
	}

	return img
}

// SavePNG renders the preview and writes it to path
func (r *PreviewRenderer) SavePNG(path string) error {
	img := r.Render()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding preview PNG: %w", err)
	}
	return nil
}

// drawGrid draws light grid lines at GridSpacing intervals with coordinate
// labels along the axes
func (r *PreviewRenderer) drawGrid(img *image.RGBA, minX, minY, maxX, maxY float64, toPixel func(Point) (int, int)) {
	gridColor := color.RGBA{230, 230, 230, 255}
	labelColor := color.RGBA{150, 150, 150, 255}

	for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
		x1, y1 := toPixel(Point{X: x, Y: minY})
		x2, y2 := toPixel(Point{X: x, Y: maxY})
		drawSegment(img, x1, y1, x2, y2, gridColor)
		drawText(img, x1+2, img.Bounds().Dy()-6, fmt.Sprintf("%.0f", x), labelColor)
	}
	for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
		x1, y1 := toPixel(Point{X: minX, Y: y})
		x2, y2 := toPixel(Point{X: maxX, Y: y})
		drawSegment(img, x1, y1, x2, y2, gridColor)
		drawText(img, 2, y1-2, fmt.Sprintf("%.0f", y), labelColor)
	}
}

// drawPolyline strokes the polyline edge by edge, including the implicit
// closing edge for closed entities
func drawPolyline(img *image.RGBA, points Polyline, closed bool, c color.RGBA, toPixel func(Point) (int, int)) {
	if len(points) < 2 {
		return
	}

	for i := 0; i < len(points)-1; i++ {
		x1, y1 := toPixel(points[i])
		x2, y2 := toPixel(points[i+1])
		drawSegment(img, x1, y1, x2, y2, c)
	}

	if closed {
		x1, y1 := toPixel(points[len(points)-1])
		x2, y2 := toPixel(points[0])
		drawSegment(img, x1, y1, x2, y2, c)
	}
}

// drawSegment draws a line between two pixel coordinates using simple DDA
// interpolation
func drawSegment(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1

	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		setPixel(img, x1, y1, c)
		return
	}

	for i := 0; i <= steps; i++ {
		x := x1 + dx*i/steps
		y := y1 + dy*i/steps
		setPixel(img, x, y, c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawText renders text at the given pixel position using the basic 7x13 font
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
