package main

import (
	"encoding/json"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/kwv/orthotrace/ortho"
)

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		_, output := app.previewDocuments()
		status := struct {
			Status      string    `json:"status"`
			Timestamp   time.Time `json:"timestamp"`
			Strategy    string    `json:"strategy"`
			HasDocument bool      `json:"hasDocument"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			Strategy:    string(app.Engine.Name()),
			HasDocument: output != nil,
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// One-shot orthogonalization endpoint: accepts a job JSON body and
	// returns the result. Per-job strategy and tuning overrides apply the
	// same way as in MQTT service mode.
	mux.HandleFunc("/orthogonalize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}

		var job ortho.Job
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			http.Error(w, "invalid job JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		result := ortho.RunJob(app.Config, &job)
		log.Printf("[HTTP] /orthogonalize job %s: processed=%v (%d -> %d points)",
			job.ID, result.Processed, len(job.Points), len(result.Points))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Printf("Error encoding job result: %v", err)
		}
	})

	// Preview endpoints serve the last processed document pair.
	mux.HandleFunc("/preview.svg", func(w http.ResponseWriter, r *http.Request) {
		input, output := app.previewDocuments()
		if output == nil {
			http.Error(w, "No processed document available", http.StatusServiceUnavailable)
			return
		}

		preview := app.newVectorPreview(input, output)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := preview.RenderToSVG(w); err != nil {
			log.Printf("Error rendering preview SVG: %v", err)
		}
	})

	mux.HandleFunc("/preview.png", func(w http.ResponseWriter, r *http.Request) {
		input, output := app.previewDocuments()
		if output == nil {
			http.Error(w, "No processed document available", http.StatusServiceUnavailable)
			return
		}

		preview := ortho.NewPreviewRenderer(input, output)
		if app.Config.Render.GridSpacing > 0 {
			preview.GridSpacing = app.Config.Render.GridSpacing
		}
		if app.Config.Render.Scale > 0 {
			preview.Scale = app.Config.Render.Scale
		}
		if !preview.HasDrawableContent() {
			http.Error(w, "No drawable content", http.StatusServiceUnavailable)
			return
		}

		img := preview.Render()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := png.Encode(w, img); err != nil {
			log.Printf("Error encoding preview PNG: %v", err)
		}
	})

	return mux
}
