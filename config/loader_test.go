// 配置加载器测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultLogConfig(), cfg.Log)
	assert.Len(t, cfg.Providers, len(KnownProviders))
}

func TestLoader_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
default_provider: deepseek
providers:
  deepseek:
    api_key: sk-yaml
    model: deepseek-reasoner
    max_tokens: 2048
    temperature: 0.5
    timeout: 45s
  openai:
    api_key: sk-openai
    base_url: https://proxy.example.com
analysis:
  prompt: "Summarize"
log:
  level: debug
  format: json
metrics:
  enabled: true
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.DefaultProvider)
	ds := cfg.Providers["deepseek"]
	assert.Equal(t, "sk-yaml", ds.APIKey)
	assert.Equal(t, "deepseek-reasoner", ds.Model)
	assert.Equal(t, 2048, ds.MaxTokens)
	require.NotNil(t, ds.Temperature)
	assert.InDelta(t, 0.5, *ds.Temperature, 1e-9)
	assert.Equal(t, 45*time.Second, ds.Timeout)
	assert.Equal(t, "https://proxy.example.com", cfg.Providers["openai"].BaseURL)

	// 未出现在 YAML 中的默认 Provider 仍然保留
	_, ok := cfg.Providers["gemini"]
	assert.True(t, ok)

	assert.Equal(t, "Summarize", cfg.Analysis.Prompt)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "docmeta", cfg.Metrics.Namespace)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("DOCMETA_DEFAULT_PROVIDER", "qwen")
	t.Setenv("DOCMETA_QWEN_API_KEY", "sk-env")
	t.Setenv("DOCMETA_QWEN_TEMPERATURE", "0.9")
	t.Setenv("DOCMETA_QWEN_TEST_TIMEOUT", "5s")
	t.Setenv("DOCMETA_LOG_LEVEL", "warn")
	t.Setenv("DOCMETA_LOG_OUTPUT_PATHS", "stdout, /tmp/docmeta.log")
	t.Setenv("DOCMETA_METRICS_ENABLED", "true")
	t.Setenv("DOCMETA_ANALYSIS_MAX_INPUT_BYTES", "1024")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "qwen", cfg.DefaultProvider)
	q := cfg.Providers["qwen"]
	assert.Equal(t, "sk-env", q.APIKey)
	require.NotNil(t, q.Temperature)
	assert.InDelta(t, 0.9, *q.Temperature, 1e-9)
	assert.Equal(t, 5*time.Second, q.TestTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stdout", "/tmp/docmeta.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, int64(1024), cfg.Analysis.MaxInputBytes)
	assert.Equal(t, []string{"qwen"}, cfg.ConfiguredProviders())
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
providers:
  anthropic:
    api_key: from-yaml
    model: claude-sonnet-4-20250514
`)
	t.Setenv("DOCMETA_ANTHROPIC_API_KEY", "from-env")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Providers["anthropic"].APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Providers["anthropic"].Model)
}

func TestLoader_EnvForCustomProviderKey(t *testing.T) {
	path := writeConfig(t, `
providers:
  my-proxy:
    base_url: http://localhost:8080
`)
	t.Setenv("DOCMETA_MY_PROXY_API_KEY", "sk-proxy")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-proxy", cfg.Providers["my-proxy"].APIKey)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("META_LOG_LEVEL", "error")
	t.Setenv("META_GEMINI_API_KEY", "g-key")

	cfg, err := NewLoader().WithEnvPrefix("META").Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "g-key", cfg.Providers["gemini"].APIKey)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("DOCMETA_OPENAI_MAX_TOKENS", "many")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCMETA_OPENAI_MAX_TOKENS")
}

func TestLoader_WithValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.NoError(t, err)

	t.Setenv("DOCMETA_LOG_FORMAT", "xml")
	_, err = NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoader_NonExistentFile(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultLogConfig(), cfg.Log)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")
	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestConfig_Validate(t *testing.T) {
	hot := 2.5
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "trace" }, wantErr: "invalid log level"},
		{name: "bad format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: "invalid log format"},
		{name: "unknown default", modify: func(c *Config) { c.DefaultProvider = "nope" }, wantErr: "default provider"},
		{name: "temperature", modify: func(c *Config) {
			s := c.Providers["openai"]
			s.Temperature = &hot
			c.Providers["openai"] = s
		}, wantErr: "temperature"},
		{name: "max tokens", modify: func(c *Config) {
			s := c.Providers["qwen"]
			s.MaxTokens = -1
			c.Providers["qwen"] = s
		}, wantErr: "max_tokens"},
		{name: "input limit", modify: func(c *Config) { c.Analysis.MaxInputBytes = 0 }, wantErr: "max_input_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderSettings_ProviderConfig(t *testing.T) {
	temp := 0.1
	s := ProviderSettings{
		APIKey:      "k",
		Model:       "m",
		MaxTokens:   5,
		Temperature: &temp,
		BaseURL:     "http://x",
		Timeout:     time.Second,
		TestTimeout: 2 * time.Second,
	}
	pc := s.ProviderConfig()
	assert.Equal(t, "k", pc.APIKey)
	assert.Equal(t, "m", pc.Model)
	assert.Equal(t, 5, pc.MaxTokens)
	assert.Same(t, &temp, pc.Temperature)
	assert.Equal(t, "http://x", pc.BaseURL)
	assert.Equal(t, time.Second, pc.Timeout)
	assert.Equal(t, 2*time.Second, pc.TestTimeout)

	cfg := &Config{Providers: map[string]ProviderSettings{"openai": s}}
	assert.Equal(t, pc, cfg.ProviderConfigs()["openai"])
}

func TestConfig_ConfiguredProvidersSorted(t *testing.T) {
	cfg := DefaultConfig()
	for _, id := range []string{"qwen", "anthropic", "deepseek"} {
		s := cfg.Providers[id]
		s.APIKey = "key-" + id
		cfg.Providers[id] = s
	}
	s := cfg.Providers["openai"]
	s.APIKey = "   "
	cfg.Providers["openai"] = s

	assert.Equal(t, []string{"anthropic", "deepseek", "qwen"}, cfg.ConfiguredProviders())
}

func TestMustLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "log: [")
	assert.Panics(t, func() {
		NewLoader().WithConfigPath(path).MustLoad()
	})
}

func TestLoadFromEnv_Function(t *testing.T) {
	t.Setenv("DOCMETA_DEEPSEEK_API_KEY", "sk-ds")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-ds", cfg.Providers["deepseek"].APIKey)
}
