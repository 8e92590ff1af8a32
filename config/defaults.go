// =============================================================================
// 📦 DocMeta 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

// KnownProviders 默认配置中预置的 Provider ID，使环境变量无需 YAML 即可生效
var KnownProviders = []string{"anthropic", "deepseek", "gemini", "openai", "qwen"}

// DefaultPrompt 未指定提示词时的默认指令
const DefaultPrompt = "Extract the document metadata as a JSON object with the keys " +
	"title, author, date, language, summary and keywords. Use null for unknown values."

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: "",
		Providers:       DefaultProviders(),
		Analysis:        DefaultAnalysisConfig(),
		Log:             DefaultLogConfig(),
		Metrics:         DefaultMetricsConfig(),
	}
}

// DefaultProviders 返回每个已知 Provider 的空配置
func DefaultProviders() map[string]ProviderSettings {
	m := make(map[string]ProviderSettings, len(KnownProviders))
	for _, id := range KnownProviders {
		m[id] = ProviderSettings{}
	}
	return m
}

// DefaultAnalysisConfig 返回默认分析配置
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Prompt:        DefaultPrompt,
		MaxInputBytes: 10 << 20,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "docmeta",
	}
}
