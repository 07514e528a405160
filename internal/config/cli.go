package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CLIConfig is the dreamliftctl configuration file.
type CLIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Email   string        `yaml:"email,omitempty"`
	Token   string        `yaml:"token,omitempty"`
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		BaseURL: "http://localhost:5000",
		Timeout: 15 * time.Second,
	}
}

// DefaultCLIPath returns ~/.config/dreamlift/config.yaml (or the platform equivalent).
func DefaultCLIPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".dreamlift", "config.yaml")
	}
	return filepath.Join(dir, "dreamlift", "config.yaml")
}

// LoadCLI reads paths in order, later files overriding keys set by earlier
// ones. Missing files are skipped; unknown keys are an error.
func LoadCLI(paths ...string) (*CLIConfig, error) {
	cfg := DefaultCLIConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	return &cfg, nil
}

// ApplyEnv applies DREAMLIFT_API_URL, DREAMLIFT_TOKEN and DREAMLIFT_TIMEOUT.
func (c *CLIConfig) ApplyEnv() error {
	if v := os.Getenv("DREAMLIFT_API_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("DREAMLIFT_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("DREAMLIFT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid DREAMLIFT_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *CLIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base_url cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// SaveCLI writes cfg to path with owner-only permissions since it may hold a token.
func SaveCLI(path string, cfg *CLIConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: creating dir for %s: %w", path, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
