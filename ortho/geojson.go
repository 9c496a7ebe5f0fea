package ortho

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// orbLineString converts a Geometry of type LineString to an orb.LineString.
// Returns nil if the geometry is nil, not a LineString, or has invalid
// coordinates.
func orbLineString(geom *Geometry) orb.LineString {
	if geom == nil || geom.Type != GeometryLineString {
		return nil
	}
	var coords [][2]float64
	if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
		return nil
	}
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c[0], c[1]}
	}
	return ls
}

// orbOuterRing extracts the outer ring of a Polygon geometry as a closed
// orb.Ring. Returns nil for anything that is not a valid polygon.
func orbOuterRing(geom *Geometry) orb.Ring {
	if geom == nil || geom.Type != GeometryPolygon {
		return nil
	}
	var rings [][][2]float64
	if err := json.Unmarshal(geom.Coordinates, &rings); err != nil || len(rings) == 0 {
		return nil
	}
	ring := make(orb.Ring, len(rings[0]))
	for i, c := range rings[0] {
		ring[i] = orb.Point{c[0], c[1]}
	}
	if len(ring) > 1 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// lineStringToGeometry converts an orb.LineString back to a Geometry
func lineStringToGeometry(ls orb.LineString) *Geometry {
	coords := make([][2]float64, len(ls))
	for i, p := range ls {
		coords[i] = [2]float64{p[0], p[1]}
	}
	coordsJSON, _ := json.Marshal(coords)
	return &Geometry{Type: GeometryLineString, Coordinates: coordsJSON}
}

// ringToGeometry converts a closed orb.Ring to a single-ring Polygon Geometry
func ringToGeometry(ring orb.Ring) *Geometry {
	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = [2]float64{p[0], p[1]}
	}
	coordsJSON, _ := json.Marshal([][][2]float64{coords})
	return &Geometry{Type: GeometryPolygon, Coordinates: coordsJSON}
}

// polylineFromOrb converts an orb point sequence into a Polyline
func polylineFromOrb(pts []orb.Point) Polyline {
	out := make(Polyline, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}

// orbFromPolyline converts a Polyline into an orb point sequence
func orbFromPolyline(pl Polyline) []orb.Point {
	out := make([]orb.Point, len(pl))
	for i, p := range pl {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// featureLabel returns a stable identifier for a feature, for reporting.
func featureLabel(f *Feature, index int) string {
	if s, ok := f.ID.(string); ok && s != "" {
		return s
	}
	if f.Properties != nil {
		if s, ok := f.Properties["id"].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("feature[%d]", index)
}

// OrthogonalizeFeatureCollection runs the pipeline over every LineString and
// Polygon feature of the collection, writing results back in place.
// LineStrings process as open sequences; the outer ring of each Polygon
// processes as a closed sequence. Inner rings are dropped: single-ring
// outlines are the expected input.
//
// Closed outlines whose absolute planar area falls below minArea are skipped
// as degenerate slivers. A minArea of 0 disables the filter. Features the
// pipeline cannot process keep their original geometry and appear in the
// report.
func OrthogonalizeFeatureCollection(fc *FeatureCollection, engine Engine, opts Options, minArea float64) ProcessReport {
	var report ProcessReport

	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}

		switch f.Geometry.Type {
		case GeometryLineString:
			ls := orbLineString(f.Geometry)
			pl := polylineFromOrb(ls)
			report.InputPoints += len(pl)

			result := RunPipeline(engine, pl, false, opts)
			if !result.Processed() {
				report.OutputPoints += len(pl)
				report.Skipped = append(report.Skipped, SkippedEntity{
					ID:     featureLabel(f, i),
					Reason: fmt.Sprintf("degenerate after %s stage", result.Stage),
				})
				continue
			}

			f.Geometry = lineStringToGeometry(orb.LineString(orbFromPolyline(result.Points)))
			report.Processed++
			report.OutputPoints += len(result.Points)

		case GeometryPolygon:
			ring := orbOuterRing(f.Geometry)
			if len(ring) < 4 {
				report.Skipped = append(report.Skipped, SkippedEntity{
					ID:     featureLabel(f, i),
					Reason: "polygon outer ring too short",
				})
				continue
			}

			if minArea > 0 && math.Abs(planar.Area(ring)) < minArea {
				report.Skipped = append(report.Skipped, SkippedEntity{
					ID:     featureLabel(f, i),
					Reason: fmt.Sprintf("ring area below minimum %v", minArea),
				})
				continue
			}

			// Rings carry an explicit closing vertex; the pipeline's
			// closed flag replaces it.
			pl := polylineFromOrb(ring[:len(ring)-1])
			report.InputPoints += len(pl)

			result := RunPipeline(engine, pl, true, opts)
			if !result.Processed() {
				report.OutputPoints += len(pl)
				report.Skipped = append(report.Skipped, SkippedEntity{
					ID:     featureLabel(f, i),
					Reason: fmt.Sprintf("degenerate after %s stage", result.Stage),
				})
				continue
			}

			out := orb.Ring(orbFromPolyline(result.Points))
			out = append(out, out[0])
			f.Geometry = ringToGeometry(out)
			report.Processed++
			report.OutputPoints += len(result.Points)
		}
	}

	return report
}

// LoadFeatureCollection reads a GeoJSON FeatureCollection from disk with the
// same existence and size checks as LoadDocument
func LoadFeatureCollection(path string) (*FeatureCollection, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("geojson file not found: %s", path)
		}
		return nil, fmt.Errorf("checking geojson file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("geojson file is empty: %s", path)
	}
	if info.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("geojson file too large: %s (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geojson file: %w", err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	return &fc, nil
}

// SaveFeatureCollection writes a FeatureCollection to disk as indented JSON
func SaveFeatureCollection(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling geojson: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}

	return nil
}
