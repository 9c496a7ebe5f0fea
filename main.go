package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

const defaultConfigFile = "config.yaml"

var (
	configFile   = flag.String("config", defaultConfigFile, "Path to configuration file")
	inputFile    = flag.String("input", "", "Input outline document (.json) or FeatureCollection (.geojson)")
	outputFile   = flag.String("output", "", "Output file (default: <input>.ortho.<ext>)")
	strategy     = flag.String("strategy", "", "Orthogonalization strategy: simplify-fit or cluster-snap")
	renderOnly   = flag.Bool("render", false, "Render a before/after preview instead of writing a document")
	renderFile   = flag.String("render-output", "preview.png", "Output file for --render mode")
	renderFormat = flag.String("render-format", "raster", "Render format: raster, svg, or vector-png")
	mqttMode     = flag.Bool("mqtt", false, "Run MQTT service mode for streaming orthogonalization")
	httpMode     = flag.Bool("http", false, "Enable HTTP server")
	httpPort     = flag.Int("http-port", 8080, "HTTP server port (default 8080)")
	// Tuning overrides (0 keeps the config/default value)
	minStep    = flag.Float64("min-step", 0, "Drop input points closer than this to their predecessor")
	eps        = flag.Float64("eps", 0, "Perpendicular-distance simplification tolerance")
	clusterTol = flag.Float64("cluster-tol", 0, "1D grouping tolerance for the cluster-snap strategy")
	minEdgeLen = flag.Float64("min-edge", 0, "Drop reconstructed edges shorter than this")
	minArea    = flag.Float64("min-area", 0, "Skip closed outlines with area below this (geojson input)")
)

func main() {
	flag.Parse()
	fmt.Printf("orthotrace version: %s\n", Version)

	app := NewApp()
	err := app.ApplyOptions(AppOptions{
		ConfigFile:   *configFile,
		InputFile:    *inputFile,
		OutputFile:   *outputFile,
		Strategy:     *strategy,
		RenderFile:   *renderFile,
		RenderFormat: *renderFormat,
		HTTPPort:     *httpPort,
		MqttMode:     *mqttMode,
		HTTPMode:     *httpMode,
		MinStep:      *minStep,
		Eps:          *eps,
		ClusterTol:   *clusterTol,
		MinEdgeLen:   *minEdgeLen,
		MinArea:      *minArea,
	})
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	switch {
	case *mqttMode || *httpMode:
		// Service mode may pre-process an input document so the preview
		// endpoints have something to serve immediately.
		if *inputFile != "" {
			if err := app.RunProcess(); err != nil {
				log.Printf("Warning: initial processing failed: %v", err)
			}
		}
		if err := app.RunService(); err != nil {
			log.Fatalf("Service error: %v", err)
		}
	case *renderOnly:
		if err := app.RunRender(); err != nil {
			log.Fatalf("Render error: %v", err)
		}
	case *inputFile != "":
		if err := app.RunProcess(); err != nil {
			log.Fatalf("Processing error: %v", err)
		}
	default:
		fmt.Println("Nothing to do: pass -input, -render, -mqtt, or -http")
		flag.Usage()
		os.Exit(2)
	}
}
