// Package config holds the explicit configuration object for a flow
// engine. One field exists per prompt concern; values are defaulted at
// construction, overridable from a YAML file, and never mutated after
// the engine is built.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mdflow/internal/prompt"
)

// PromptSet carries the instruction text for each concern. An empty
// Document field means no document-level instruction is sent.
type PromptSet struct {
	Document         string `yaml:"document"`
	Interaction      string `yaml:"interaction"`
	InteractionError string `yaml:"interaction_error"`
	Blackboard       string `yaml:"blackboard"`
}

// Config is the full engine configuration.
type Config struct {
	Prompts PromptSet `yaml:"prompts"`

	// Model and Temperature are passed through to the provider when
	// set; providers fall back to their own defaults otherwise.
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML config file and fills unset prompt fields with the
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills empty prompt fields with the built-in texts. The
// document instruction stays empty unless configured.
func (c *Config) ApplyDefaults() {
	if c.Prompts.Interaction == "" {
		c.Prompts.Interaction = prompt.DefaultInteraction
	}
	if c.Prompts.InteractionError == "" {
		c.Prompts.InteractionError = prompt.DefaultInteractionError
	}
	if c.Prompts.Blackboard == "" {
		c.Prompts.Blackboard = prompt.DefaultBlackboard
	}
}
