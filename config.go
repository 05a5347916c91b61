package questiongenerator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables of the engine and its surfaces. The diversity
// threshold and snippet length are configuration, not constants: zero values
// select the package defaults.
type Config struct {
	ListenAddr    string           `yaml:"listen_addr"`
	DatabasePath  string           `yaml:"database_path"`
	SessionSecret string           `yaml:"session_secret"`
	OpenAI        OpenAIConfig     `yaml:"openai"`
	Generation    GenerationConfig `yaml:"generation"`
}

// OpenAIConfig configures the remote generation strategy.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// GenerationConfig configures the engine heuristics.
type GenerationConfig struct {
	DiversityThreshold float64 `yaml:"diversity_threshold"`
	SnippetMaxLength   int     `yaml:"snippet_max_length"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":8080",
		DatabasePath: "./questions.db",
		Generation: GenerationConfig{
			DiversityThreshold: DefaultDiversityThreshold,
			SnippetMaxLength:   DefaultSnippetLength,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults. The OPENAI_API_KEY environment variable overrides
// the file value either way.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if cfg.Generation.DiversityThreshold <= 0 {
		cfg.Generation.DiversityThreshold = DefaultDiversityThreshold
	}
	if cfg.Generation.SnippetMaxLength <= 0 {
		cfg.Generation.SnippetMaxLength = DefaultSnippetLength
	}
	return cfg, nil
}

// NewGeneratorFromConfig builds a question generator with the configured
// model and heuristics applied.
func NewGeneratorFromConfig(cfg Config) *QuestionGenerator {
	extractor := NewExtractor(NewProseAnalyzer())

	local := NewTemplateStrategy(extractor)
	local.SetSnippetLength(cfg.Generation.SnippetMaxLength)

	g := &QuestionGenerator{local: local}
	if cfg.OpenAI.APIKey != "" {
		remote := NewRemoteStrategy(cfg.OpenAI.APIKey, extractor)
		remote.SetModel(cfg.OpenAI.Model)
		remote.SetDiversityThreshold(cfg.Generation.DiversityThreshold)
		remote.SetSnippetLength(cfg.Generation.SnippetMaxLength)
		g.remote = remote
	}
	return g
}
