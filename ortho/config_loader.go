package ortho

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ValidateConfig checks the configuration for values the pipeline would
// reject. Tuning parameters must be positive, the strategy must be known,
// and the minimum area filter must not be negative.
func ValidateConfig(config *Config) error {
	if err := config.Tuning.Options().Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if _, err := ParseStrategy(config.Strategy); err != nil {
		return err
	}
	if config.MinArea < 0 {
		return fmt.Errorf("minArea must not be negative, got %v", config.MinArea)
	}
	if config.Render.GridSpacing < 0 {
		return fmt.Errorf("render.gridSpacing must not be negative, got %v", config.Render.GridSpacing)
	}
	if config.Render.Resolution < 0 {
		return fmt.Errorf("render.resolution must not be negative, got %v", config.Render.Resolution)
	}
	if config.Render.Scale < 0 {
		return fmt.Errorf("render.scale must not be negative, got %v", config.Render.Scale)
	}
	return nil
}
