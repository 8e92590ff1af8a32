package deepseek

import (
	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/analyzer/providers/openaicompat"
	"go.uber.org/zap"
)

const (
	// ProviderID is the registry id of the DeepSeek adapter.
	ProviderID = "deepseek"

	defaultBaseURL = "https://api.deepseek.com"
	modelChat      = "deepseek-chat"
	modelReasoner  = "deepseek-reasoner"
)

// Vendor 描述 DeepSeek 的模型目录、能力与价格。
var Vendor = providers.VendorSpec{
	ID:   ProviderID,
	Name: "DeepSeek",
	Models: []analyzer.ModelInfo{
		{ID: modelChat, Name: "DeepSeek Chat (V3)"},
		{ID: modelReasoner, Name: "DeepSeek Reasoner (R1)"},
	},
	DefaultModel: modelChat,
	Vision:       false,
	Pricing: providers.PricingTable{
		Models: map[string]analyzer.Pricing{
			modelChat:     {Input: 0.00027, Output: 0.0011},
			modelReasoner: {Input: 0.00055, Output: 0.00219},
		},
		Default: analyzer.Pricing{Input: 0.00027, Output: 0.0011},
	},
}

// DeepSeekProvider 实现 DeepSeek 元数据分析提供者.
// DeepSeek 使用 OpenAI 兼容的 API 格式.
type DeepSeekProvider struct {
	*openaicompat.Provider
}

// NewDeepSeekProvider 创建新的 DeepSeek 提供者实例.
func NewDeepSeekProvider(cfg providers.ProviderConfig, logger *zap.Logger) *DeepSeekProvider {
	return &DeepSeekProvider{
		Provider: openaicompat.New(openaicompat.Config{
			Vendor:         Vendor,
			DefaultBaseURL: defaultBaseURL,
			EndpointPath:   "/chat/completions",
			JSONMode:       true,
			RequestHook:    deepseekRequestHook,
		}, cfg, logger),
	}
}

// deepseekRequestHook handles DeepSeek-specific request modifications.
// deepseek-reasoner rejects response_format and ignores temperature.
func deepseekRequestHook(body *providers.ChatRequest, _ bool) {
	if body.Model == modelReasoner {
		body.ResponseFormat = nil
		body.Temperature = nil
	}
}
