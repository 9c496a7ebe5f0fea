package ortho

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func previewDocuments() (*Document, *Document) {
	input := &Document{
		Entities: []Entity{
			{ID: "room", Closed: true, Points: noisyRectangle.Clone()},
		},
	}
	output := &Document{
		Entities: []Entity{
			{ID: "room", Closed: true, Points: Polyline{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		},
	}
	return input, output
}

func TestCalculateBounds(t *testing.T) {
	input, output := previewDocuments()
	r := NewPreviewRenderer(input, output)

	minX, minY, maxX, maxY := r.CalculateBounds()

	if minX != 0 || minY != 0 {
		t.Errorf("min = (%v, %v), want (0, 0)", minX, minY)
	}
	if !almostEqual(maxX, 10.3) || !almostEqual(maxY, 10.2) {
		t.Errorf("max = (%v, %v), want (10.3, 10.2)", maxX, maxY)
	}
}

func TestCalculateBounds_Empty(t *testing.T) {
	r := NewPreviewRenderer(nil, &Document{})

	minX, minY, maxX, maxY := r.CalculateBounds()
	if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
		t.Errorf("empty bounds = (%v, %v, %v, %v), want zeros", minX, minY, maxX, maxY)
	}
}

func TestHasDrawableContent(t *testing.T) {
	input, output := previewDocuments()
	if !NewPreviewRenderer(input, output).HasDrawableContent() {
		t.Error("expected drawable content")
	}
	if NewPreviewRenderer(nil, nil).HasDrawableContent() {
		t.Error("nil documents must not be drawable")
	}
	dots := &Document{Entities: []Entity{{ID: "dot", Points: Polyline{{1, 1}}}}}
	if NewPreviewRenderer(dots, nil).HasDrawableContent() {
		t.Error("single-point entities must not be drawable")
	}
}

func TestRender(t *testing.T) {
	input, output := previewDocuments()
	r := NewPreviewRenderer(input, output)

	img := r.Render()

	b := img.Bounds()
	if b.Dx() <= 2*r.Padding || b.Dy() <= 2*r.Padding {
		t.Fatalf("image too small: %v", b)
	}

	// Something was drawn on the white background.
	white := color.RGBA{255, 255, 255, 255}
	drawn := false
	for y := b.Min.Y; y < b.Max.Y && !drawn; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != white {
				drawn = true
				break
			}
		}
	}
	if !drawn {
		t.Error("rendered image is blank")
	}
}

func TestSavePNG(t *testing.T) {
	input, output := previewDocuments()
	path := filepath.Join(t.TempDir(), "preview.png")

	if err := NewPreviewRenderer(input, output).SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("preview file is empty")
	}
}
