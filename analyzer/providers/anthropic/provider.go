package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/internal/tlsutil"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const (
	// ProviderID is the registry id of the Claude adapter.
	ProviderID = "anthropic"

	defaultBaseURL = "https://api.anthropic.com"

	// statusOverloaded Anthropic 专有的过载状态码
	statusOverloaded = 529
)

// Vendor 描述 Claude 的模型目录、能力与价格。
var Vendor = providers.VendorSpec{
	ID:   ProviderID,
	Name: "Claude",
	Models: []analyzer.ModelInfo{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4"},
		{ID: "claude-opus-4-20250514", Name: "Claude Opus 4"},
		{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku"},
	},
	DefaultModel: "claude-sonnet-4-20250514",
	Vision:       true,
	Pricing: providers.PricingTable{
		Models: map[string]analyzer.Pricing{
			"claude-sonnet-4":  {Input: 0.003, Output: 0.015},
			"claude-opus-4":    {Input: 0.015, Output: 0.075},
			"claude-3-5-haiku": {Input: 0.0008, Output: 0.004},
		},
		Default: analyzer.Pricing{Input: 0.003, Output: 0.015},
	},
}

var statusOverrides = providers.StatusOverrides{
	statusOverloaded: analyzer.ErrServiceUnavailable,
}

// ClaudeProvider 实现 Anthropic Claude 元数据分析提供者.
type ClaudeProvider struct {
	providers.Base

	BaseURL string
	Client  *http.Client
}

var _ analyzer.Provider = (*ClaudeProvider)(nil)

// NewClaudeProvider 创建新的 Claude 提供者实例.
func NewClaudeProvider(cfg providers.ProviderConfig, logger *zap.Logger) *ClaudeProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ClaudeProvider{
		Base:    providers.NewBase(Vendor, cfg, logger),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  tlsutil.SecureHTTPClient(),
	}
}

// client 按当前配置构造 SDK 客户端；重试由调用方决定，这里关闭。
func (p *ClaudeProvider) client() anthropic.Client {
	return anthropic.NewClient(
		option.WithAPIKey(p.Config().APIKey),
		option.WithBaseURL(p.BaseURL+"/"),
		option.WithHTTPClient(p.Client),
		option.WithMaxRetries(0),
	)
}

// AnalyzeText analyzes a text document.
func (p *ClaudeProvider) AnalyzeText(ctx context.Context, text, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckText(text, prompt); perr != nil {
		return nil, perr
	}
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(providers.BuildPrompt(prompt, text)),
	}
	return p.analyze(ctx, opts, blocks)
}

// AnalyzeImage analyzes one image.
func (p *ClaudeProvider) AnalyzeImage(ctx context.Context, image analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return p.AnalyzeImages(ctx, []analyzer.Image{image}, prompt, opts)
}

// AnalyzeImages analyzes several images in one message. Images come first, then the instruction.
func (p *ClaudeProvider) AnalyzeImages(ctx context.Context, images []analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckImages(images); perr != nil {
		return nil, perr
	}
	if perr := p.RequireInlineImages(images); perr != nil {
		return nil, perr
	}
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(providers.ImageMIMEType(img), providers.ImageBase64(img)))
	}
	if prompt = providers.BuildPrompt(prompt, ""); prompt != "" {
		blocks = append(blocks, anthropic.NewTextBlock(prompt))
	}
	return p.analyze(ctx, opts, blocks)
}

func (p *ClaudeProvider) analyze(ctx context.Context, opts analyzer.Options, blocks []anthropic.ContentBlockParamUnion) (*analyzer.AnalysisResult, error) {
	s := p.Resolve(opts)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.Model),
		MaxTokens:   int64(s.MaxTokens),
		Temperature: anthropic.Float(s.Temperature),
		System:      []anthropic.TextBlockParam{{Text: providers.SystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout())
	defer cancel()

	client := p.client()
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		perr := p.classify(err)
		p.Logger().Warn("analysis request failed",
			zap.String("model", s.Model),
			zap.String("kind", string(perr.Kind)),
			zap.Int("status", perr.HTTPStatus))
		return nil, perr
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	metadata, perr := providers.ParseMetadata(p.ID(), sb.String())
	if perr != nil {
		p.Logger().Debug("model answer could not be normalized", zap.String("kind", string(perr.Kind)))
		return nil, perr
	}

	usage := providers.DecodeUsage([]byte(resp.Usage.RawJSON()))
	p.Logger().Debug("analysis completed", zap.String("model", s.Model), zap.Int("fields", len(metadata)))
	return providers.NewResult(p.ID(), s.Model, string(resp.Model), metadata, usage), nil
}

// TestConnection 发送一个最小的 Messages 请求验证凭据。
func (p *ClaudeProvider) TestConnection(ctx context.Context) analyzer.ConnectionResult {
	if !p.Configured() {
		return p.NotConfiguredResult()
	}
	s := p.Resolve(analyzer.Options{})

	ctx, cancel := context.WithTimeout(ctx, p.TestTimeout())
	defer cancel()

	client := p.client()
	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.Model),
		MaxTokens: providers.TestMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hello")),
		},
	})
	if err != nil {
		return p.FailedResult(p.classify(err))
	}
	return p.ConnectedResult(s.Model)
}

// classify 把 SDK 错误映射到统一分类：带状态码的走状态表，其余视为传输失败。
func (p *ClaudeProvider) classify(err error) *analyzer.ProviderError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return providers.ClassifyResponse(p.ID(), apiErr.StatusCode, []byte(apiErr.RawJSON()), statusOverrides).
			WithCause(err)
	}
	return providers.TransportError(p.ID(), err)
}
