package openai

import (
	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/analyzer/providers/openaicompat"
	"go.uber.org/zap"
)

// ProviderID is the registry id of the OpenAI adapter.
const ProviderID = "openai"

// Vendor 描述 OpenAI 的模型目录、能力与价格。
var Vendor = providers.VendorSpec{
	ID:   ProviderID,
	Name: "OpenAI",
	Models: []analyzer.ModelInfo{
		{ID: "gpt-4o", Name: "GPT-4o"},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		{ID: "gpt-4.1", Name: "GPT-4.1"},
		{ID: "gpt-4.1-mini", Name: "GPT-4.1 mini"},
	},
	DefaultModel: "gpt-4o-mini",
	Vision:       true,
	Pricing: providers.PricingTable{
		Models: map[string]analyzer.Pricing{
			"gpt-4o":       {Input: 0.0025, Output: 0.01},
			"gpt-4o-mini":  {Input: 0.00015, Output: 0.0006},
			"gpt-4.1":      {Input: 0.002, Output: 0.008},
			"gpt-4.1-mini": {Input: 0.0004, Output: 0.0016},
		},
		Default: analyzer.Pricing{Input: 0.00015, Output: 0.0006},
	},
}

// OpenAIProvider 实现 OpenAI 元数据分析提供者.
type OpenAIProvider struct {
	*openaicompat.Provider
}

// NewOpenAIProvider 创建新的 OpenAI 提供者实例.
func NewOpenAIProvider(cfg providers.ProviderConfig, logger *zap.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		Provider: openaicompat.New(openaicompat.Config{
			Vendor:         Vendor,
			DefaultBaseURL: "https://api.openai.com",
			EndpointPath:   "/v1/chat/completions",
			JSONMode:       true,
		}, cfg, logger),
	}
}
