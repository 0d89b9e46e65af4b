// Package config loads and merges the settings that drive a search
// run: built-in defaults, an optional .rfgrep.yaml file, then CLI
// flags (highest precedence). Grounded on the teacher's YAML rule
// loading (formerly pkg/rule/loader.go, via gopkg.in/yaml.v3) adapted
// here to load run configuration instead of rule definitions.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kh3rld/rfgrep/pkg/classify"
)

// Config is the flag/file-merged form of OrchestratorConfig plus
// CLI-only fields (spec's OrchestratorConfig, expanded per
// SPEC_FULL.md §3).
type Config struct {
	Regex           bool   `yaml:"regex"`
	Word            bool   `yaml:"word"`
	ContextLines    int    `yaml:"context"`
	InvertMatch     bool   `yaml:"invert"`
	MaxMatches      int    `yaml:"max_matches"`
	PerFileTimeout  int    `yaml:"timeout_seconds"`
	MaxFileSize     int64  `yaml:"max_file_size"`
	Safety          string `yaml:"safety"`
	FileTypeStrategy string `yaml:"file_type_strategy"`
	IncludeExts     []string `yaml:"include"`
	ExcludeExts     []string `yaml:"exclude"`
	Threads         int    `yaml:"threads"`
	NDJSON          bool   `yaml:"ndjson"`
	NoIgnore        bool   `yaml:"no_ignore"`
	AllowRoot       bool   `yaml:"allow_root"`
	Color           bool   `yaml:"color"`

	// CLI-only, never loaded from file.
	Query  string `yaml:"-"`
	Root   string `yaml:"-"`
	Output string `yaml:"-"`
}

// Default returns built-in defaults (spec §4.4/§4.7 defaults).
func Default() Config {
	return Config{
		ContextLines:   0,
		Threads:        0, // 0 means "min(available_cores, 8)", resolved by the orchestrator
		Safety:         "default",
		FileTypeStrategy: "default",
		Color:          true,
	}
}

// configFileNames are searched, in order, relative to root then $HOME.
var configFileNames = []string{".rfgrep.yaml", ".rfgrep.yml"}

// Load starts from Default(), merges a .rfgrep.yaml found in root or
// $HOME (root takes precedence), and returns the merged config. File
// values only override fields explicitly set in the YAML document;
// absent YAML keys keep the Default() value.
func Load(root string) (Config, error) {
	cfg := Default()

	if path := findConfigFile(root); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func findConfigFile(root string) string {
	dirs := []string{root}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range configFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// SafetyPolicy maps the config's string field to classify.SafetyPolicy.
func (c Config) SafetyPolicy() classify.SafetyPolicy {
	switch c.Safety {
	case "conservative":
		return classify.SafetyConservative
	case "performance":
		return classify.SafetyPerformance
	default:
		return classify.SafetyDefault
	}
}

// Strategy maps the config's string field to classify.FileTypeStrategy.
func (c Config) Strategy() classify.FileTypeStrategy {
	switch c.FileTypeStrategy {
	case "conservative":
		return classify.StrategyConservative
	case "performance":
		return classify.StrategyPerformance
	case "comprehensive":
		return classify.StrategyComprehensive
	default:
		return classify.StrategyDefault
	}
}
