package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, EnvBaseURL, EnvModel, EnvTemperature, EnvMaxTokens} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, DefaultChunkSize, cfg.Documents.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.Documents.ChunkOverlap)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "stdio", cfg.PlaywrightMCP.Type)
	assert.Equal(t, "npx", cfg.PlaywrightMCP.Cmd)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `
llm:
  api_key: from-file
  model: Qwen/Qwen2.5-7B-Instruct
  temperature: 0
browser:
  timeout: 5
tools:
  search:
    type: duckduckgo
    config:
      max_results: 3
      nested:
        region: wt-wt
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv(EnvModel, "deepseek-ai/DeepSeek-V3")
	t.Setenv(EnvMaxTokens, "256")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "deepseek-ai/DeepSeek-V3", cfg.LLM.Model)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.Zero(t, cfg.LLM.Temperature)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, 5, cfg.Browser.Timeout)
	assert.True(t, cfg.Browser.Headless, "fields absent from the file keep their defaults")

	tool := cfg.Tools["search"]
	assert.Equal(t, "duckduckgo", tool.Type)
	assert.Equal(t, 3, tool.Config["max_results"].Int())
	require.True(t, tool.Config["nested"].IsMap())
	assert.Equal(t, "wt-wt", tool.Config["nested"].Map()["region"].String())
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTemperature, "warm")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTemperature)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingAPIKey)

	cfg.LLM.APIKey = "   "
	require.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.LLM.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SILICONFLOW_API_KEY=sk-dotenv\nDEFAULT_MODEL=from-dotenv\n"), 0o644))

	// An already-set variable wins over the file.
	t.Setenv(EnvModel, "from-env")
	// Empty values count as unset for godotenv, so drop the key explicitly.
	require.NoError(t, os.Unsetenv(EnvAPIKey))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), path))
	t.Cleanup(func() { os.Unsetenv(EnvAPIKey) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.LLM.APIKey)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}
