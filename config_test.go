package questiongenerator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "./questions.db", cfg.DatabasePath)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.Equal(t, DefaultDiversityThreshold, cfg.Generation.DiversityThreshold)
	assert.Equal(t, DefaultSnippetLength, cfg.Generation.SnippetMaxLength)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
database_path: "/tmp/test.db"
session_secret: "secret"
openai:
  api_key: "file-key"
  model: "gpt-4o-mini"
generation:
  diversity_threshold: 0.7
  snippet_max_length: 120
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "secret", cfg.SessionSecret)
	assert.Equal(t, "file-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 0.7, cfg.Generation.DiversityThreshold)
	assert.Equal(t, 120, cfg.Generation.SnippetMaxLength)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai:\n  api_key: \"file-key\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
}

func TestLoadConfigClampsInvalidTunables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  diversity_threshold: -1
  snippet_max_length: 0
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDiversityThreshold, cfg.Generation.DiversityThreshold)
	assert.Equal(t, DefaultSnippetLength, cfg.Generation.SnippetMaxLength)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
