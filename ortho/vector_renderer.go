package ortho

import (
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorPreview renders an input document and its orthogonalized output as
// vector graphics: SVG for inspection in a browser, or rasterized PNG at a
// configurable resolution.
type VectorPreview struct {
	Input  *Document
	Output *Document

	Padding     float64           // padding around the drawing in input units
	Resolution  canvas.Resolution // resolution for PNG output
	GridSpacing float64           // grid line spacing in input units; 0 disables
	StrokeWidth float64           // stroke width for outline edges
}

// NewVectorPreview creates a vector preview with default settings
func NewVectorPreview(input, output *Document) *VectorPreview {
	return &VectorPreview{
		Input:       input,
		Output:      output,
		Padding:     10.0,
		Resolution:  canvas.DPI(300),
		GridSpacing: DefaultPreviewGridSpacing,
		StrokeWidth: 0.5,
	}
}

// SetDPI sets the PNG rasterization resolution in dots per inch
func (r *VectorPreview) SetDPI(dpi float64) {
	r.Resolution = canvas.DPI(dpi)
}

// canvasRenderer is the interface both the svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the preview as an SVG to the provided writer
func (r *VectorPreview) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, maxX, maxY, width, height)

	return svgRenderer.Close()
}

// RenderToPNG writes the preview as a PNG to the provided writer
func (r *VectorPreview) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, maxX, maxY, width, height)

	return png.Encode(w, rast)
}

// renderToCanvas draws the grid, input, and output (shared logic for SVG and PNG)
func (r *VectorPreview) renderToCanvas(renderer canvasRenderer, minX, minY, maxX, maxY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p Point) (float64, float64) {
		return (p.X - minX) + r.Padding, (p.Y - minY) + r.Padding
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = r.StrokeWidth / 4
		gridStyle.Dashes = []float64{1.0, 1.0}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Point{X: x, Y: minY})
			x2, y2 := toCanvas(Point{X: x, Y: maxY})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Point{X: minX, Y: y})
			x2, y2 := toCanvas(Point{X: maxX, Y: y})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Input outlines, stroked grey.
	if r.Input != nil {
		inputStyle := canvas.DefaultStyle
		inputStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		inputStyle.Stroke = canvas.Paint{Color: canvas.Lightgray}
		inputStyle.StrokeWidth = r.StrokeWidth

		r.renderDocument(renderer, r.Input, inputStyle, toCanvas)
	}

	// Output outlines on top, stroked dark blue.
	if r.Output != nil {
		outputStyle := canvas.DefaultStyle
		outputStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		outputStyle.Stroke = canvas.Paint{Color: canvas.Darkblue}
		outputStyle.StrokeWidth = r.StrokeWidth

		r.renderDocument(renderer, r.Output, outputStyle, toCanvas)
	}
}

// renderDocument strokes every entity of the document as one canvas path
func (r *VectorPreview) renderDocument(renderer canvasRenderer, doc *Document, style canvas.Style, toCanvas func(Point) (float64, float64)) {
	for _, e := range doc.Entities {
		if len(e.Points) < 2 {
			continue
		}

		cp := &canvas.Path{}
		for i, p := range e.Points {
			cx, cy := toCanvas(p)
			if i == 0 {
				cp.MoveTo(cx, cy)
			} else {
				cp.LineTo(cx, cy)
			}
		}
		if e.Closed {
			cp.Close()
		}
		renderer.RenderPath(cp, style, canvas.Identity)
	}
}

// bounds returns the world-space bounding box over both documents
func (r *VectorPreview) bounds() (minX, minY, maxX, maxY float64) {
	pr := PreviewRenderer{Input: r.Input, Output: r.Output}
	return pr.CalculateBounds()
}
