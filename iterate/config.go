package iterate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for a loop run.
type Config struct {
	MaxIterations    int      `yaml:"max_iterations" json:"max_iterations"`
	Model            string   `yaml:"model" json:"model"`
	Provider         string   `yaml:"provider" json:"provider"`
	WorkDir          string   `yaml:"work_dir" json:"work_dir"`                     // project root; empty = current directory
	Exclude          []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`   // extra directory names excluded from snapshots
	CommandTimeoutMs int      `yaml:"command_timeout_ms" json:"command_timeout_ms"` // 0 = no timeout
}

// DefaultConfig returns the default configuration: a single iteration against
// the default provider model.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    1,
		Model:            "gpt-4o-mini",
		Provider:         "openai",
		CommandTimeoutMs: 0,
	}
}

// LoadConfig reads a YAML config file and overlays it onto the defaults.
// A missing file is not an error; the defaults are returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 1
	}
	return cfg, nil
}
