package qwen

import (
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/analyzer/providers/openaicompat"
	"go.uber.org/zap"
)

const (
	// ProviderID is the registry id of the Qwen adapter.
	ProviderID = "qwen"

	visionModel = "qwen-vl-plus"
)

// Vendor 描述通义千问的模型目录、能力与价格。
var Vendor = providers.VendorSpec{
	ID:   ProviderID,
	Name: "Qwen",
	Models: []analyzer.ModelInfo{
		{ID: "qwen-plus", Name: "Qwen Plus"},
		{ID: "qwen-turbo", Name: "Qwen Turbo"},
		{ID: "qwen-max", Name: "Qwen Max"},
		{ID: visionModel, Name: "Qwen VL Plus"},
		{ID: "qwen-vl-max", Name: "Qwen VL Max"},
	},
	DefaultModel: "qwen-plus",
	Vision:       true,
	Pricing: providers.PricingTable{
		Models: map[string]analyzer.Pricing{
			"qwen-turbo":  {Input: 0.0008, Output: 0.002},
			"qwen-plus":   {Input: 0.004, Output: 0.012},
			"qwen-max":    {Input: 0.02, Output: 0.06},
			visionModel:   {Input: 0.008, Output: 0.008},
			"qwen-vl-max": {Input: 0.02, Output: 0.02},
		},
		Default: analyzer.Pricing{Input: 0.004, Output: 0.012},
	},
}

// QwenProvider 实现通义千问元数据分析提供者.
type QwenProvider struct {
	*openaicompat.Provider
}

// NewQwenProvider 创建新的 Qwen 提供者实例.
func NewQwenProvider(cfg providers.ProviderConfig, logger *zap.Logger) *QwenProvider {
	return &QwenProvider{
		Provider: openaicompat.New(openaicompat.Config{
			Vendor:         Vendor,
			DefaultBaseURL: "https://dashscope.aliyuncs.com/compatible-mode",
			EndpointPath:   "/v1/chat/completions",
			JSONMode:       true,
			RequestHook:    qwenRequestHook,
		}, cfg, logger),
	}
}

// qwenRequestHook routes image requests to a vision model.
func qwenRequestHook(body *providers.ChatRequest, hasImages bool) {
	if hasImages && !strings.HasPrefix(body.Model, "qwen-vl") {
		body.Model = visionModel
	}
}
