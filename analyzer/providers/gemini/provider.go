package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/internal/tlsutil"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ProviderID is the registry id of the Gemini adapter.
const ProviderID = "gemini"

const jsonMIMEType = "application/json"

// statusOverrides Google 前端网关返回的 502/504 视为暂时不可用
var statusOverrides = providers.StatusOverrides{
	http.StatusBadGateway:     analyzer.ErrServiceUnavailable,
	http.StatusGatewayTimeout: analyzer.ErrServiceUnavailable,
}

// Vendor 描述 Gemini 的模型目录、能力与价格。
var Vendor = providers.VendorSpec{
	ID:   ProviderID,
	Name: "Gemini",
	Models: []analyzer.ModelInfo{
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
		{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash"},
	},
	DefaultModel: "gemini-2.5-flash",
	Vision:       true,
	Pricing: providers.PricingTable{
		Models: map[string]analyzer.Pricing{
			"gemini-2.5-flash": {Input: 0.0003, Output: 0.0025},
			"gemini-2.5-pro":   {Input: 0.00125, Output: 0.01},
			"gemini-2.0-flash": {Input: 0.0001, Output: 0.0004},
		},
		Default: analyzer.Pricing{Input: 0.0003, Output: 0.0025},
	},
}

// GeminiProvider 实现 Google Gemini 元数据分析提供者.
type GeminiProvider struct {
	providers.Base

	// BaseURL 为空时使用 SDK 默认地址
	BaseURL string
	Client  *http.Client
}

var _ analyzer.Provider = (*GeminiProvider)(nil)

// NewGeminiProvider 创建新的 Gemini 提供者实例.
func NewGeminiProvider(cfg providers.ProviderConfig, logger *zap.Logger) *GeminiProvider {
	return &GeminiProvider{
		Base:    providers.NewBase(Vendor, cfg, logger),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Client:  tlsutil.SecureHTTPClient(),
	}
}

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     p.Config().APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.Client,
	}
	if p.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL + "/"}
	}
	return genai.NewClient(ctx, cc)
}

// AnalyzeText analyzes a text document.
func (p *GeminiProvider) AnalyzeText(ctx context.Context, text, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckText(text, prompt); perr != nil {
		return nil, perr
	}
	parts := []*genai.Part{genai.NewPartFromText(providers.BuildPrompt(prompt, text))}
	return p.analyze(ctx, opts, parts)
}

// AnalyzeImage analyzes one image.
func (p *GeminiProvider) AnalyzeImage(ctx context.Context, image analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return p.AnalyzeImages(ctx, []analyzer.Image{image}, prompt, opts)
}

// AnalyzeImages analyzes several images with one GenerateContent call.
func (p *GeminiProvider) AnalyzeImages(ctx context.Context, images []analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckImages(images); perr != nil {
		return nil, perr
	}
	if perr := p.RequireInlineImages(images); perr != nil {
		return nil, perr
	}
	parts := make([]*genai.Part, 0, len(images)+1)
	if prompt = providers.BuildPrompt(prompt, ""); prompt != "" {
		parts = append(parts, genai.NewPartFromText(prompt))
	}
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, providers.ImageMIMEType(img)))
	}
	return p.analyze(ctx, opts, parts)
}

func (p *GeminiProvider) analyze(ctx context.Context, opts analyzer.Options, parts []*genai.Part) (*analyzer.AnalysisResult, error) {
	s := p.Resolve(opts)

	ctx, cancel := context.WithTimeout(ctx, p.Timeout())
	defer cancel()

	client, err := p.client(ctx)
	if err != nil {
		return nil, providers.TransportError(p.ID(), err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(providers.SystemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(s.MaxTokens),
		Temperature:       genai.Ptr(float32(s.Temperature)),
		ResponseMIMEType:  jsonMIMEType,
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, s.Model, contents, config)
	if err != nil {
		perr := p.classify(err)
		p.Logger().Warn("analysis request failed",
			zap.String("model", s.Model),
			zap.String("kind", string(perr.Kind)),
			zap.Int("status", perr.HTTPStatus))
		return nil, perr
	}

	metadata, perr := providers.ParseMetadata(p.ID(), responseText(resp))
	if perr != nil {
		p.Logger().Debug("model answer could not be normalized", zap.String("kind", string(perr.Kind)))
		return nil, perr
	}

	p.Logger().Debug("analysis completed", zap.String("model", s.Model), zap.Int("fields", len(metadata)))
	return providers.NewResult(p.ID(), s.Model, resp.ModelVersion, metadata, usageMap(resp)), nil
}

// TestConnection 发送一个最小的 GenerateContent 请求验证凭据。
func (p *GeminiProvider) TestConnection(ctx context.Context) analyzer.ConnectionResult {
	if !p.Configured() {
		return p.NotConfiguredResult()
	}
	s := p.Resolve(analyzer.Options{})

	ctx, cancel := context.WithTimeout(ctx, p.TestTimeout())
	defer cancel()

	client, err := p.client(ctx)
	if err != nil {
		return p.FailedResult(providers.TransportError(p.ID(), err))
	}
	_, err = client.Models.GenerateContent(ctx, s.Model, genai.Text("Hello"), &genai.GenerateContentConfig{
		MaxOutputTokens: providers.TestMaxTokens,
	})
	if err != nil {
		return p.FailedResult(p.classify(err))
	}
	return p.ConnectedResult(s.Model)
}

// classify maps genai errors. The SDK reports HTTP failures as APIError values.
func (p *GeminiProvider) classify(err error) *analyzer.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		return providers.ClassifyStatus(p.ID(), apiErr.Code, apiErr.Message, statusOverrides).WithCause(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code > 0 {
		return providers.ClassifyStatus(p.ID(), apiErrPtr.Code, apiErrPtr.Message, statusOverrides).WithCause(err)
	}
	return providers.TransportError(p.ID(), err)
}

// responseText 拼接第一个候选的文本段，跳过思考段。
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func usageMap(resp *genai.GenerateContentResponse) map[string]any {
	if resp.UsageMetadata == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(resp.UsageMetadata)
	if err != nil {
		return map[string]any{}
	}
	return providers.DecodeUsage(raw)
}
