package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  base_url: https://api-inference.modelscope.cn/v1
  model: Qwen/Qwen2.5-72B-Instruct
  api_key: from-file
search:
  provider: searxng
  searxng:
    base_url: http://localhost:8888
analysis:
  timeout_seconds: 30
companies:
  file: configs/companies.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ANALYST_LLM_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Qwen/Qwen2.5-72B-Instruct", cfg.LLM.Model)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "searxng", cfg.Search.Provider)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout())
	assert.Equal(t, 3, cfg.Analysis.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Analysis.RetryDelay())
	assert.Equal(t, DefaultPaperQueries, cfg.Papers.Queries)
	assert.Equal(t, 3, cfg.Papers.ResultsPerQuery)
	assert.Equal(t, "configs/companies.yaml", cfg.Companies.File)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, float32(0.7), cfg.LLM.Temperature)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 600*time.Second, cfg.Analysis.Timeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.Papers.Queries, 5)
}
