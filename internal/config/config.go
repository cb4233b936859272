// Package config provides the Config struct and loader for .langbench.yaml
// project-level configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file looked up by Load.
const ConfigFileName = ".langbench.yaml"

// EnvAPIKey is the environment variable holding the OpenRouter bearer token.
const EnvAPIKey = "OPENROUTER_API_KEY"

// Default values for configuration. New() references them and no other code
// should duplicate them.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	DefaultMaxConcurrentPerModel = 5
	DefaultMaxAttempts           = 3
	DefaultRequestTimeoutSec     = 120
	DefaultEvalTimeoutSec        = 10

	DefaultQuestionsDir = "questions/"
	DefaultResultsDir   = "results/"
	DefaultReportsDir   = "reports/"
)

// defaultModels maps display names to OpenRouter model ids.
var defaultModels = map[string]string{
	"claude-opus-4.6":   "anthropic/claude-opus-4-6",
	"claude-sonnet-4.6": "anthropic/claude-sonnet-4-6",
	"gpt-5.2":           "openai/gpt-5.2",
	"gpt-4.1":           "openai/gpt-4.1",
	"gemini-2.5-pro":    "google/gemini-2.5-pro-preview-06-05",
	"deepseek-r1":       "deepseek/deepseek-r1",
}

// PathsConfig holds directory paths for questions, results, and reports.
type PathsConfig struct {
	Questions string `yaml:"questions,omitempty"`
	Results   string `yaml:"results,omitempty"`
	Reports   string `yaml:"reports,omitempty"`
}

// ClientConfig holds inference transport parameters.
type ClientConfig struct {
	BaseURL               string `yaml:"base_url,omitempty"`
	MaxConcurrentPerModel int    `yaml:"max_concurrent_per_model,omitempty"`
	MaxAttempts           int    `yaml:"max_attempts,omitempty"`
	RequestTimeoutSec     int    `yaml:"request_timeout_seconds,omitempty"`
}

// VerifierConfig holds code-execution parameters.
type VerifierConfig struct {
	EvalTimeoutSec int `yaml:"eval_timeout_seconds,omitempty"`
}

// Config is the top-level configuration loaded from .langbench.yaml.
// The API key is never read from the file, only from the environment.
type Config struct {
	Models   map[string]string `yaml:"models,omitempty"`
	Client   ClientConfig      `yaml:"client,omitempty"`
	Verifier VerifierConfig    `yaml:"verifier,omitempty"`
	Paths    PathsConfig       `yaml:"paths,omitempty"`

	APIKey string `yaml:"-"`
}

// New returns a Config with all hard-coded defaults populated and the API key
// read from the environment.
func New() *Config {
	models := make(map[string]string, len(defaultModels))
	for name, id := range defaultModels {
		models[name] = id
	}
	return &Config{
		Models: models,
		Client: ClientConfig{
			BaseURL:               DefaultBaseURL,
			MaxConcurrentPerModel: DefaultMaxConcurrentPerModel,
			MaxAttempts:           DefaultMaxAttempts,
			RequestTimeoutSec:     DefaultRequestTimeoutSec,
		},
		Verifier: VerifierConfig{
			EvalTimeoutSec: DefaultEvalTimeoutSec,
		},
		Paths: PathsConfig{
			Questions: DefaultQuestionsDir,
			Results:   DefaultResultsDir,
			Reports:   DefaultReportsDir,
		},
		APIKey: os.Getenv(EnvAPIKey),
	}
}

// Load finds .langbench.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. If no config file
// is found, returns defaults with a nil error. Real I/O errors (e.g.
// permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if len(src.Models) > 0 {
		dst.Models = src.Models
	}
	if src.Client.BaseURL != "" {
		dst.Client.BaseURL = src.Client.BaseURL
	}
	if src.Client.MaxConcurrentPerModel > 0 {
		dst.Client.MaxConcurrentPerModel = src.Client.MaxConcurrentPerModel
	}
	if src.Client.MaxAttempts > 0 {
		dst.Client.MaxAttempts = src.Client.MaxAttempts
	}
	if src.Client.RequestTimeoutSec > 0 {
		dst.Client.RequestTimeoutSec = src.Client.RequestTimeoutSec
	}
	if src.Verifier.EvalTimeoutSec > 0 {
		dst.Verifier.EvalTimeoutSec = src.Verifier.EvalTimeoutSec
	}
	if src.Paths.Questions != "" {
		dst.Paths.Questions = src.Paths.Questions
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Reports != "" {
		dst.Paths.Reports = src.Paths.Reports
	}
}

// ModelNames returns the registry's display names, sorted.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectModels resolves the requested display names against the registry.
// A nil or empty request selects every registered model. Unknown names are an
// error listing the valid choices.
func (c *Config) SelectModels(names []string) (map[string]string, error) {
	if len(names) == 0 {
		selected := make(map[string]string, len(c.Models))
		for name, id := range c.Models {
			selected[name] = id
		}
		if len(selected) == 0 {
			return nil, errors.New("no models configured")
		}
		return selected, nil
	}

	selected := make(map[string]string, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		id, ok := c.Models[name]
		if !ok {
			return nil, fmt.Errorf("unknown model %q (available: %s)",
				name, strings.Join(c.ModelNames(), ", "))
		}
		selected[name] = id
	}
	return selected, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
