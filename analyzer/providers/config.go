package providers

import "time"

// 适配器级默认值，ProviderConfig 与 Options 都未指定时使用。
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.3
	DefaultTimeout     = 60 * time.Second
	DefaultTestTimeout = 30 * time.Second

	// 连通性检查使用的 token 上限
	TestMaxTokens = 10
)

// ProviderConfig 所有 Provider 共享的配置。构造后只读，重新配置需要新建实例。
type ProviderConfig struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	BaseURL     string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	TestTimeout time.Duration `json:"test_timeout,omitempty" yaml:"test_timeout,omitempty"`
}

// Float64 returns a pointer to v, for ProviderConfig.Temperature and Options.Temperature.
func Float64(v float64) *float64 {
	return &v
}
