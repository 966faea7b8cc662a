package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the content of a fireclass.yaml file.
//
//	adapter: bolt
//	path: data/app.db
//	timeout: 2s
type Config struct {
	Adapter string        `yaml:"adapter"`
	Path    string        `yaml:"path"`
	Project string        `yaml:"project"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoadConfig reads the config file at path. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
