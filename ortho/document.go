package ortho

import (
	"encoding/json"
	"fmt"
	"os"
)

// MaxDocumentSize caps the size of document files the loader will read.
// Outline documents past this size are almost certainly not what this tool
// is meant to process.
const MaxDocumentSize = 64 << 20

// Entity is one polylinear entity of a document: an ordered vertex list
// plus the flag saying whether an implicit edge closes it.
type Entity struct {
	ID     string   `json:"id"`
	Layer  string   `json:"layer,omitempty"`
	Closed bool     `json:"closed"`
	Points Polyline `json:"points"`
}

// Document is a neutral outline document: a named collection of polyline
// entities. It stands in for whatever drawing model produced the outlines;
// the pipeline only ever sees vertex lists and closed flags.
type Document struct {
	Name     string   `json:"name,omitempty"`
	Entities []Entity `json:"entities"`
}

// LoadDocument reads a JSON outline document from disk. The file must
// exist, be non-empty, and stay under MaxDocumentSize.
func LoadDocument(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", path)
		}
		return nil, fmt.Errorf("checking document: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("document is empty: %s", path)
	}
	if info.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("document too large: %s (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document JSON: %w", err)
	}

	return &doc, nil
}

// SaveDocument writes the document to disk as indented JSON
func SaveDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	return nil
}

// SkippedEntity records an entity the pipeline could not process and why.
// Skipped entities are left untouched in the document.
type SkippedEntity struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ProcessReport summarizes one ProcessDocument invocation.
type ProcessReport struct {
	Processed    int             `json:"processed"`
	Skipped      []SkippedEntity `json:"skipped,omitempty"`
	InputPoints  int             `json:"inputPoints"`
	OutputPoints int             `json:"outputPoints"`
}

// ProcessDocument runs the pipeline once per entity and writes successful
// results back in place: an entity whose pipeline output has at least 2
// points gets its vertex list replaced (the closed flag carries through
// unchanged); anything shorter leaves the entity untouched and is recorded
// in the report. When onlyLayers is non-empty, entities on other layers are
// left alone without being reported.
func ProcessDocument(doc *Document, engine Engine, opts Options, onlyLayers ...string) ProcessReport {
	var report ProcessReport

	inScope := func(layer string) bool {
		if len(onlyLayers) == 0 {
			return true
		}
		for _, l := range onlyLayers {
			if l == layer {
				return true
			}
		}
		return false
	}

	for i := range doc.Entities {
		e := &doc.Entities[i]
		if !inScope(e.Layer) {
			continue
		}

		report.InputPoints += len(e.Points)

		if len(e.Points) < 2 {
			report.OutputPoints += len(e.Points)
			report.Skipped = append(report.Skipped, SkippedEntity{
				ID:     e.ID,
				Reason: "fewer than 2 input points",
			})
			continue
		}

		result := RunPipeline(engine, e.Points, e.Closed, opts)
		if !result.Processed() {
			report.OutputPoints += len(e.Points)
			report.Skipped = append(report.Skipped, SkippedEntity{
				ID:     e.ID,
				Reason: fmt.Sprintf("degenerate after %s stage", result.Stage),
			})
			continue
		}

		e.Points = result.Points
		report.Processed++
		report.OutputPoints += len(e.Points)
	}

	return report
}
