package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/docmeta/analyzer"
	"go.uber.org/zap"
)

// VendorSpec 服务商的静态描述：身份、模型目录、能力与计价。
type VendorSpec struct {
	ID           string
	Name         string
	Models       []analyzer.ModelInfo
	DefaultModel string
	Vision       bool
	Pricing      PricingTable
}

// Settings 单次调用最终生效的参数。
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Base 组合进每个适配器的共享行为：身份与能力、配置检查、参数解析、计价兜底。
type Base struct {
	spec   VendorSpec
	cfg    ProviderConfig
	logger *zap.Logger
}

// NewBase creates the shared adapter core. A nil logger is replaced by a no-op logger.
func NewBase(spec VendorSpec, cfg ProviderConfig, logger *zap.Logger) Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Base{
		spec:   spec,
		cfg:    cfg,
		logger: logger.With(zap.String("provider", spec.ID)),
	}
}

// ID returns the provider id.
func (b *Base) ID() string { return b.spec.ID }

// Name returns the display name.
func (b *Base) Name() string { return b.spec.Name }

// AvailableModels returns a copy of the model catalog in display order.
func (b *Base) AvailableModels() []analyzer.ModelInfo {
	out := make([]analyzer.ModelInfo, len(b.spec.Models))
	copy(out, b.spec.Models)
	return out
}

// DefaultModel returns the vendor default model.
func (b *Base) DefaultModel() string { return b.spec.DefaultModel }

// SupportsVision reports the static vision capability.
func (b *Base) SupportsVision() bool { return b.spec.Vision }

// Pricing returns the price for model, or the default tier when unknown.
func (b *Base) Pricing(model string) analyzer.Pricing {
	return b.spec.Pricing.Lookup(model)
}

// Config returns the adapter configuration.
func (b *Base) Config() ProviderConfig { return b.cfg }

// Logger returns the provider scoped logger.
func (b *Base) Logger() *zap.Logger { return b.logger }

// Configured reports whether a credential is present.
func (b *Base) Configured() bool {
	return strings.TrimSpace(b.cfg.APIKey) != ""
}

// Timeout 分析请求的超时。
func (b *Base) Timeout() time.Duration {
	if b.cfg.Timeout > 0 {
		return b.cfg.Timeout
	}
	return DefaultTimeout
}

// TestTimeout 连通性检查的超时，独立于分析超时。
func (b *Base) TestTimeout() time.Duration {
	if b.cfg.TestTimeout > 0 {
		return b.cfg.TestTimeout
	}
	return DefaultTestTimeout
}

// Resolve 按 Options → ProviderConfig → 适配器默认值 的顺序确定本次调用参数。
func (b *Base) Resolve(opts analyzer.Options) Settings {
	s := Settings{
		Model:       ChooseModel(opts.Model, b.cfg.Model, b.spec.DefaultModel),
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
	switch {
	case opts.MaxTokens > 0:
		s.MaxTokens = opts.MaxTokens
	case b.cfg.MaxTokens > 0:
		s.MaxTokens = b.cfg.MaxTokens
	}
	switch {
	case opts.Temperature != nil:
		s.Temperature = *opts.Temperature
	case b.cfg.Temperature != nil:
		s.Temperature = *b.cfg.Temperature
	}
	return s
}

// Error builds a ProviderError tagged with this provider.
func (b *Base) Error(kind analyzer.ErrorKind, message string) *analyzer.ProviderError {
	return analyzer.NewError(kind, message).WithProvider(b.spec.ID)
}

func (b *Base) notConfigured() *analyzer.ProviderError {
	return b.Error(analyzer.ErrNotConfigured, fmt.Sprintf("%s API key is not configured", b.spec.Name))
}

// CheckText 文本分析的前置检查：凭据存在且有可分析的内容。
func (b *Base) CheckText(text, prompt string) *analyzer.ProviderError {
	if !b.Configured() {
		return b.notConfigured()
	}
	if strings.TrimSpace(text) == "" && strings.TrimSpace(prompt) == "" {
		return b.Error(analyzer.ErrInvalidRequest, "no text content to analyze")
	}
	return nil
}

// CheckImages 图像分析的前置检查。能力检查先于一切，不支持视觉时不会构造请求。
func (b *Base) CheckImages(images []analyzer.Image) *analyzer.ProviderError {
	if !b.spec.Vision {
		return b.Error(analyzer.ErrVisionUnsupported,
			fmt.Sprintf("%s does not support image analysis", b.spec.Name))
	}
	if !b.Configured() {
		return b.notConfigured()
	}
	if len(images) == 0 {
		return b.Error(analyzer.ErrInvalidRequest, "no images to analyze")
	}
	for i, img := range images {
		if img.Empty() {
			return b.Error(analyzer.ErrInvalidRequest, fmt.Sprintf("image %d has neither data nor url", i))
		}
	}
	return nil
}

// NotConfiguredResult 未配置凭据时 TestConnection 的结果，不发起网络请求。
func (b *Base) NotConfiguredResult() analyzer.ConnectionResult {
	return analyzer.ConnectionResult{
		Success: false,
		Message: b.notConfigured().Message,
	}
}

// ConnectedResult TestConnection 成功时的结果。
func (b *Base) ConnectedResult(model string) analyzer.ConnectionResult {
	return analyzer.ConnectionResult{
		Success: true,
		Message: fmt.Sprintf("Successfully connected to %s (model: %s)", b.spec.Name, model),
	}
}

// FailedResult TestConnection 失败时的结果。
func (b *Base) FailedResult(perr *analyzer.ProviderError) analyzer.ConnectionResult {
	return analyzer.ConnectionResult{
		Success: false,
		Message: fmt.Sprintf("Connection to %s failed: %s", b.spec.Name, perr.Message),
	}
}

// ChooseModel 按优先级选择模型：请求 > 配置 > 服务商默认。
func ChooseModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}
