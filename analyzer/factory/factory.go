// Package factory provides a centralized factory for creating analysis Provider
// instances by name. It imports all provider sub-packages and maps string
// names to their constructors, which keeps the analyzer package free of
// vendor imports.
package factory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	claude "github.com/BaSui01/docmeta/analyzer/providers/anthropic"
	"github.com/BaSui01/docmeta/analyzer/providers/deepseek"
	"github.com/BaSui01/docmeta/analyzer/providers/gemini"
	"github.com/BaSui01/docmeta/analyzer/providers/openai"
	"github.com/BaSui01/docmeta/analyzer/providers/qwen"
	"go.uber.org/zap"
)

// aliases 额外接受的名称
var aliases = map[string]string{
	"claude": claude.ProviderID,
	"google": gemini.ProviderID,
}

// CanonicalName 把别名与大小写差异归一为 Provider ID。
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// NewProviderFromConfig creates a Provider instance based on the provider name.
//
// Supported names: deepseek, openai, qwen, anthropic (claude), gemini (google).
func NewProviderFromConfig(name string, cfg providers.ProviderConfig, logger *zap.Logger) (analyzer.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch CanonicalName(name) {
	case deepseek.ProviderID:
		return deepseek.NewDeepSeekProvider(cfg, logger), nil
	case openai.ProviderID:
		return openai.NewOpenAIProvider(cfg, logger), nil
	case qwen.ProviderID:
		return qwen.NewQwenProvider(cfg, logger), nil
	case claude.ProviderID:
		return claude.NewClaudeProvider(cfg, logger), nil
	case gemini.ProviderID:
		return gemini.NewGeminiProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s)", name, strings.Join(SupportedProviders(), ", "))
	}
}

// SupportedProviders returns the built-in provider ids.
func SupportedProviders() []string {
	return []string{
		deepseek.ProviderID,
		openai.ProviderID,
		qwen.ProviderID,
		claude.ProviderID,
		gemini.ProviderID,
	}
}

// RegistryConfig describes multiple providers and which one is the default.
type RegistryConfig struct {
	// Default is the name of the default provider (must match a key in Providers).
	Default string `json:"default" yaml:"default"`
	// Providers maps provider names to their configurations.
	Providers map[string]providers.ProviderConfig `json:"providers" yaml:"providers"`
}

// Decorator wraps every provider before registration (e.g. analyzer.Instrument).
type Decorator func(analyzer.Provider) analyzer.Provider

// NewRegistryFromConfig creates a ProviderRegistry populated with all providers
// defined in the RegistryConfig. It sets the default provider if specified.
// Any provider that fails to initialize is logged as a warning and skipped.
func NewRegistryFromConfig(cfg RegistryConfig, logger *zap.Logger, decorators ...Decorator) (*analyzer.ProviderRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := analyzer.NewProviderRegistry()

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, err := NewProviderFromConfig(name, cfg.Providers[name], logger)
		if err != nil {
			logger.Warn("skipping provider: initialization failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}
		for _, d := range decorators {
			p = d(p)
		}
		reg.Register(p)
		logger.Info("provider registered", zap.String("provider", p.ID()))
	}

	if cfg.Default != "" {
		if err := reg.SetDefault(CanonicalName(cfg.Default)); err != nil {
			return reg, fmt.Errorf("failed to set default provider %q: %w", cfg.Default, err)
		}
	}

	return reg, nil
}
