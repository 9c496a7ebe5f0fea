package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", Version)
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, defaultConfigFile, *configFile)
	assert.Equal(t, "raster", *renderFormat)
	assert.Equal(t, "preview.png", *renderFile)
	assert.Equal(t, 8080, *httpPort)
	assert.False(t, *mqttMode)
	assert.False(t, *httpMode)
}

func TestFlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"config", "input", "output", "strategy",
		"render", "render-output", "render-format",
		"mqtt", "http", "http-port",
		"min-step", "eps", "cluster-tol", "min-edge", "min-area",
	} {
		assert.NotNil(t, flag.Lookup(name), "flag -%s not registered", name)
	}
}
