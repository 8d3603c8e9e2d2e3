package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultServicesPath is where the sidecar wiring file lives by default.
const DefaultServicesPath = "config/services.yaml"

// Service is one inference sidecar endpoint.
type Service struct {
	URL string `yaml:"url"`
}

// Services describes the two model sidecars the analyzer talks to.
type Services struct {
	Emotion Service `yaml:"emotion"`
	Pose    Service `yaml:"pose"`

	// TimeoutSeconds is the per-request sidecar timeout. Zero means the
	// client default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the sidecar request timeout.
func (s *Services) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LoadServices reads the sidecar wiring from a YAML file.
func LoadServices(path string) (*Services, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services config: %w", err)
	}
	defer f.Close()

	var cfg Services
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse services config: %w", err)
	}
	if cfg.Emotion.URL == "" {
		return nil, fmt.Errorf("services config missing emotion.url")
	}
	if cfg.Pose.URL == "" {
		return nil, fmt.Errorf("services config missing pose.url")
	}
	return &cfg, nil
}
