// =============================================================================
// 📦 DocMeta 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("docmeta.yaml").
//	    WithEnvPrefix("DOCMETA").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/docmeta/analyzer/providers"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 DocMeta 的完整配置结构
type Config struct {
	// DefaultProvider 默认使用的 Provider ID
	DefaultProvider string `yaml:"default_provider" env:"DEFAULT_PROVIDER"`

	// Providers 各 Provider 的凭据与参数，键为 Provider ID。
	// 环境变量按 <PREFIX>_<ID>_<FIELD> 覆盖已存在的键。
	Providers map[string]ProviderSettings `yaml:"providers" env:"-"`

	// Analysis 分析默认值
	Analysis AnalysisConfig `yaml:"analysis" env:"ANALYSIS"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// ProviderSettings 单个 Provider 的配置
type ProviderSettings struct {
	// API Key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 模型（为空时使用 Provider 默认模型）
	Model string `yaml:"model" env:"MODEL"`
	// 最大输出 Token 数
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 温度参数（为空时使用 Provider 默认值）
	Temperature *float64 `yaml:"temperature" env:"TEMPERATURE"`
	// 基础 URL（可选）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 分析请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 连通性检查超时
	TestTimeout time.Duration `yaml:"test_timeout" env:"TEST_TIMEOUT"`
}

// AnalysisConfig 分析默认值
type AnalysisConfig struct {
	// 未指定提示词时使用的默认指令
	Prompt string `yaml:"prompt" env:"PROMPT"`
	// 单个输入文件的最大字节数
	MaxInputBytes int64 `yaml:"max_input_bytes" env:"MAX_INPUT_BYTES"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// ProviderConfig 转换为适配器配置
func (s ProviderSettings) ProviderConfig() providers.ProviderConfig {
	return providers.ProviderConfig{
		APIKey:      s.APIKey,
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		BaseURL:     s.BaseURL,
		Timeout:     s.Timeout,
		TestTimeout: s.TestTimeout,
	}
}

// ProviderConfigs 返回所有 Provider 的适配器配置
func (c *Config) ProviderConfigs() map[string]providers.ProviderConfig {
	out := make(map[string]providers.ProviderConfig, len(c.Providers))
	for id, s := range c.Providers {
		out[id] = s.ProviderConfig()
	}
	return out
}

// ConfiguredProviders 返回已配置 API Key 的 Provider ID（已排序）
func (c *Config) ConfiguredProviders() []string {
	ids := make([]string, 0, len(c.Providers))
	for id, s := range c.Providers {
		if strings.TrimSpace(s.APIKey) != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "DOCMETA",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 4. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderSettings)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return err
	}

	// map 值不可寻址，逐个复制、覆盖后写回
	for id, settings := range cfg.Providers {
		prefix := l.envPrefix + "_" + envName(id)
		if err := l.setFieldsFromEnv(reflect.ValueOf(&settings).Elem(), prefix); err != nil {
			return err
		}
		cfg.Providers[id] = settings
	}
	return nil
}

// envName 把 Provider ID 转成环境变量片段（大写，非字母数字替换为下划线）
func envName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, id)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// 获取 env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		// 获取环境变量值
		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		// 设置字段值
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.Ptr:
		// 可选字段：分配新值后按元素类型解析
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)

	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q", c.Log.Format))
	}

	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			errs = append(errs, fmt.Sprintf("default provider %q is not configured", c.DefaultProvider))
		}
	}

	ids := make([]string, 0, len(c.Providers))
	for id := range c.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := c.Providers[id]
		if s.MaxTokens < 0 {
			errs = append(errs, fmt.Sprintf("%s: max_tokens must not be negative", id))
		}
		if s.Temperature != nil && (*s.Temperature < 0 || *s.Temperature > 2) {
			errs = append(errs, fmt.Sprintf("%s: temperature must be between 0 and 2", id))
		}
		if s.Timeout < 0 || s.TestTimeout < 0 {
			errs = append(errs, fmt.Sprintf("%s: timeouts must not be negative", id))
		}
	}

	if c.Analysis.MaxInputBytes <= 0 {
		errs = append(errs, "analysis.max_input_bytes must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// MustLoad 加载配置，失败时 panic
func (l *Loader) MustLoad() *Config {
	cfg, err := l.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
