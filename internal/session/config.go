// Package session implements Yoku's session driver: the module-mode and
// REPL-mode entry points that thread a code source, a long-lived type
// checker, and a long-lived evaluator together, plus the `.yoku.yaml`
// config loader that tunes REPL ambience.
package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes the ambient behavior of a session: REPL prompts, coloring,
// and whether `test` declarations run. A missing `.yoku.yaml` is not an
// error; DefaultConfig applies instead (SPEC_FULL.md §2.3).
type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	Color              bool   `yaml:"color"`
	RunTests           bool   `yaml:"run_tests"`
}

// DefaultConfig returns the prompts mandated by spec §6.2, color on, and
// tests off, the baseline a missing or partial config file is merged
// against.
func DefaultConfig() Config {
	return Config{
		Prompt:             "> ",
		ContinuationPrompt: ".. ",
		Color:              true,
		RunTests:           false,
	}
}

// LoadConfig reads a `.yoku.yaml` file at path and merges it over
// DefaultConfig. A missing file is not an error — the defaults are
// returned unchanged, per SPEC_FULL.md §2.3.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}
