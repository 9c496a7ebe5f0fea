package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kwv/orthotrace/ortho"
)

// App encapsulates the application state and dependencies
type App struct {
	Config *ortho.Config
	Engine ortho.Engine
	Opts   ortho.Options

	// CLI flags (effectively dependencies)
	ConfigFile   string
	InputFile    string
	OutputFile   string
	RenderFile   string
	RenderFormat string
	HTTPPort     int
	MqttMode     bool
	HTTPMode     bool

	// Last processed document pair, served by the preview endpoints.
	mu         sync.RWMutex
	lastInput  *ortho.Document
	lastOutput *ortho.Document
}

// AppOptions carries parsed CLI flags into the App
type AppOptions struct {
	ConfigFile   string
	InputFile    string
	OutputFile   string
	Strategy     string
	RenderFile   string
	RenderFormat string
	HTTPPort     int
	MqttMode     bool
	HTTPMode     bool

	MinStep    float64
	Eps        float64
	ClusterTol float64
	MinEdgeLen float64
	MinArea    float64
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions loads the config file (when present), layers CLI overrides
// on top of it, and resolves the engine and tuning options
func (a *App) ApplyOptions(opts AppOptions) error {
	a.ConfigFile = opts.ConfigFile
	a.InputFile = opts.InputFile
	a.OutputFile = opts.OutputFile
	a.RenderFile = opts.RenderFile
	a.RenderFormat = opts.RenderFormat
	a.HTTPPort = opts.HTTPPort
	a.MqttMode = opts.MqttMode
	a.HTTPMode = opts.HTTPMode

	config := &ortho.Config{}
	if a.ConfigFile != "" {
		if _, err := os.Stat(a.ConfigFile); err == nil {
			loaded, err := ortho.LoadConfig(a.ConfigFile)
			if err != nil {
				return err
			}
			config = loaded
		} else if opts.ConfigFile != defaultConfigFile {
			// An explicitly requested config file must exist.
			return fmt.Errorf("config file not found: %s", a.ConfigFile)
		}
	}

	// CLI overrides take precedence over the config file.
	if opts.Strategy != "" {
		config.Strategy = opts.Strategy
	}
	if opts.MinStep != 0 {
		config.Tuning.MinStep = opts.MinStep
	}
	if opts.Eps != 0 {
		config.Tuning.Eps = opts.Eps
	}
	if opts.ClusterTol != 0 {
		config.Tuning.ClusterTol = opts.ClusterTol
	}
	if opts.MinEdgeLen != 0 {
		config.Tuning.MinEdgeLen = opts.MinEdgeLen
	}
	if opts.MinArea != 0 {
		config.MinArea = opts.MinArea
	}

	if err := ortho.ValidateConfig(config); err != nil {
		return err
	}

	strategy, err := ortho.ParseStrategy(config.Strategy)
	if err != nil {
		return err
	}

	a.Config = config
	a.Engine = ortho.EngineFor(strategy)
	a.Opts = config.Tuning.Options()
	return nil
}

// isGeoJSON reports whether the path looks like a GeoJSON file
func isGeoJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".geojson"
}

// RunProcess loads the input document, orthogonalizes every entity, and
// writes the result to the output file. JSON outline documents and GeoJSON
// FeatureCollections are both supported, chosen by file extension.
func (a *App) RunProcess() error {
	if a.InputFile == "" {
		return fmt.Errorf("no input file specified")
	}
	output := a.OutputFile
	if output == "" {
		output = deriveOutputPath(a.InputFile)
	}

	start := time.Now()

	var report ortho.ProcessReport
	if isGeoJSON(a.InputFile) {
		fc, err := ortho.LoadFeatureCollection(a.InputFile)
		if err != nil {
			return err
		}
		report = ortho.OrthogonalizeFeatureCollection(fc, a.Engine, a.Opts, a.Config.MinArea)
		if err := ortho.SaveFeatureCollection(output, fc); err != nil {
			return err
		}
	} else {
		doc, err := ortho.LoadDocument(a.InputFile)
		if err != nil {
			return err
		}
		input := cloneDocument(doc)
		report = ortho.ProcessDocument(doc, a.Engine, a.Opts, a.Config.Layers...)
		if err := ortho.SaveDocument(output, doc); err != nil {
			return err
		}
		a.setPreviewDocuments(input, doc)
	}

	printReport(report, a.Engine.Name(), output, time.Since(start))
	return nil
}

// RunRender processes the input document and writes a before/after preview
// image
func (a *App) RunRender() error {
	if a.InputFile == "" {
		return fmt.Errorf("no input file specified")
	}

	doc, err := ortho.LoadDocument(a.InputFile)
	if err != nil {
		return err
	}
	input := cloneDocument(doc)
	report := ortho.ProcessDocument(doc, a.Engine, a.Opts, a.Config.Layers...)
	a.setPreviewDocuments(input, doc)

	renderFile := a.RenderFile
	if renderFile == "" {
		renderFile = "preview.png"
	}

	switch a.RenderFormat {
	case "svg":
		preview := a.newVectorPreview(input, doc)
		f, err := os.Create(renderFile)
		if err != nil {
			return fmt.Errorf("creating render file: %w", err)
		}
		defer f.Close()
		if err := preview.RenderToSVG(f); err != nil {
			return err
		}
	case "vector-png":
		preview := a.newVectorPreview(input, doc)
		f, err := os.Create(renderFile)
		if err != nil {
			return fmt.Errorf("creating render file: %w", err)
		}
		defer f.Close()
		if err := preview.RenderToPNG(f); err != nil {
			return err
		}
	default: // raster
		preview := ortho.NewPreviewRenderer(input, doc)
		if a.Config.Render.GridSpacing > 0 {
			preview.GridSpacing = a.Config.Render.GridSpacing
		}
		if a.Config.Render.Scale > 0 {
			preview.Scale = a.Config.Render.Scale
		}
		if err := preview.SavePNG(renderFile); err != nil {
			return err
		}
	}

	printReport(report, a.Engine.Name(), renderFile, 0)
	return nil
}

// newVectorPreview builds a vector preview with render settings from config
func (a *App) newVectorPreview(input, output *ortho.Document) *ortho.VectorPreview {
	preview := ortho.NewVectorPreview(input, output)
	if a.Config.Render.GridSpacing > 0 {
		preview.GridSpacing = a.Config.Render.GridSpacing
	}
	if a.Config.Render.Resolution > 0 {
		preview.SetDPI(a.Config.Render.Resolution)
	}
	return preview
}

// RunService starts MQTT and/or HTTP service mode and blocks until a
// termination signal arrives
func (a *App) RunService() error {
	var svc *ortho.Service

	if a.MqttMode {
		var err error
		svc, err = ortho.NewService(a.Config, nil)
		if err != nil {
			return err
		}
		if svc == nil {
			log.Println("MQTT service not started (no broker configured)")
		}
	}

	var httpServer *http.Server
	if a.HTTPMode {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", a.HTTPPort),
			Handler: newHTTPServer(a),
		}
		go func() {
			log.Printf("HTTP server listening on %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	if svc == nil && httpServer == nil {
		return fmt.Errorf("service mode requested but neither MQTT nor HTTP is enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	if svc != nil {
		svc.Disconnect()
	}
	if httpServer != nil {
		httpServer.Close()
	}
	return nil
}

// setPreviewDocuments stores the last processed document pair for the
// preview endpoints
func (a *App) setPreviewDocuments(input, output *ortho.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastInput = input
	a.lastOutput = output
}

// previewDocuments returns the last processed document pair
func (a *App) previewDocuments() (input, output *ortho.Document) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastInput, a.lastOutput
}

// cloneDocument deep-copies a document so the pre-processing state survives
// in-place processing
func cloneDocument(doc *ortho.Document) *ortho.Document {
	out := &ortho.Document{Name: doc.Name, Entities: make([]ortho.Entity, len(doc.Entities))}
	for i, e := range doc.Entities {
		out.Entities[i] = ortho.Entity{
			ID:     e.ID,
			Layer:  e.Layer,
			Closed: e.Closed,
			Points: e.Points.Clone(),
		}
	}
	return out
}

// deriveOutputPath builds "<name>.ortho<ext>" next to the input file
func deriveOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".ortho" + ext
}

// printReport logs a one-invocation summary
func printReport(report ortho.ProcessReport, strategy ortho.Strategy, output string, elapsed time.Duration) {
	fmt.Printf("Processed %d entities (%d -> %d points, strategy %s)\n",
		report.Processed, report.InputPoints, report.OutputPoints, strategy)
	for _, s := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.ID, s.Reason)
	}
	if elapsed > 0 {
		fmt.Printf("Wrote %s in %v\n", output, elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("Wrote %s\n", output)
	}
}
