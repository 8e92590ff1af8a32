// =============================================================================
// DocMeta OpenAI-Compatible Provider Base
// =============================================================================
// Shared implementation for all OpenAI-compatible analysis providers.
// Providers like DeepSeek, OpenAI and Qwen embed this and only override what
// differs (identity, BaseURL, model catalog, pricing, request hook).
// =============================================================================

package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/internal/tlsutil"
	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// GatewayOverrides 兼容服务通常位于网关之后，502/504 视为暂时不可用。
var GatewayOverrides = providers.StatusOverrides{
	http.StatusBadGateway:     analyzer.ErrServiceUnavailable,
	http.StatusGatewayTimeout: analyzer.ErrServiceUnavailable,
}

// Config holds the vendor specific settings of an OpenAI-compatible provider.
type Config struct {
	// Vendor is the static description (identity, models, vision, pricing).
	Vendor providers.VendorSpec

	// DefaultBaseURL is used when ProviderConfig.BaseURL is empty.
	DefaultBaseURL string

	// EndpointPath is the chat completions endpoint path. Defaults to "/v1/chat/completions".
	EndpointPath string

	// JSONMode sends response_format {"type":"json_object"} on analysis requests.
	JSONMode bool

	// StatusOverrides extends the baseline status classification. Defaults to GatewayOverrides.
	StatusOverrides providers.StatusOverrides

	// BuildHeaders is an optional function to set custom headers on each request.
	// If nil, the default "Authorization: Bearer <apiKey>" header is used.
	BuildHeaders func(req *http.Request, apiKey string)

	// RequestHook is an optional function to modify the request body before sending.
	// hasImages reports whether the request carries image parts.
	RequestHook func(body *providers.ChatRequest, hasImages bool)
}

// Provider is the base implementation for all OpenAI-compatible analysis providers.
type Provider struct {
	providers.Base

	Cfg     Config
	BaseURL string
	Client  *http.Client
}

var _ analyzer.Provider = (*Provider)(nil)

// New creates a new OpenAI-compatible provider.
func New(cfg Config, pc providers.ProviderConfig, logger *zap.Logger) *Provider {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	if cfg.StatusOverrides == nil {
		cfg.StatusOverrides = GatewayOverrides
	}
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = cfg.DefaultBaseURL
	}
	return &Provider{
		Base:    providers.NewBase(cfg.Vendor, pc, logger),
		Cfg:     cfg,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  tlsutil.SecureHTTPClient(),
	}
}

// buildHeaders applies headers to the HTTP request.
func (p *Provider) buildHeaders(req *http.Request, apiKey string) {
	if p.Cfg.BuildHeaders != nil {
		p.Cfg.BuildHeaders(req, apiKey)
		return
	}
	providers.BearerTokenHeaders(req, apiKey)
}

// endpoint builds the full completion URL.
func (p *Provider) endpoint() string {
	return p.BaseURL + p.Cfg.EndpointPath
}

// AnalyzeText analyzes a text document.
func (p *Provider) AnalyzeText(ctx context.Context, text, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckText(text, prompt); perr != nil {
		return nil, perr
	}
	return p.analyze(ctx, opts, providers.BuildPrompt(prompt, text), false)
}

// AnalyzeImage analyzes one image.
func (p *Provider) AnalyzeImage(ctx context.Context, image analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return p.AnalyzeImages(ctx, []analyzer.Image{image}, prompt, opts)
}

// AnalyzeImages analyzes several images in a single request.
func (p *Provider) AnalyzeImages(ctx context.Context, images []analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	if perr := p.CheckImages(images); perr != nil {
		return nil, perr
	}
	parts := make([]providers.ContentPart, 0, len(images)+1)
	if prompt = providers.BuildPrompt(prompt, ""); prompt != "" {
		parts = append(parts, providers.ContentPart{Type: "text", Text: prompt})
	}
	for _, img := range images {
		parts = append(parts, providers.ContentPart{
			Type:     "image_url",
			ImageURL: &providers.ImageRef{URL: providers.ImageURL(img)},
		})
	}
	return p.analyze(ctx, opts, parts, true)
}

// analyze 构造请求、发起一次调用并归一化响应。
func (p *Provider) analyze(ctx context.Context, opts analyzer.Options, userContent any, hasImages bool) (*analyzer.AnalysisResult, error) {
	s := p.Resolve(opts)
	body := providers.ChatRequest{
		Model: s.Model,
		Messages: []providers.ChatMessage{
			{Role: "system", Content: providers.SystemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   s.MaxTokens,
		Temperature: providers.Float64(s.Temperature),
	}
	if p.Cfg.JSONMode {
		body.ResponseFormat = providers.JSONObjectFormat()
	}
	if p.Cfg.RequestHook != nil {
		p.Cfg.RequestHook(&body, hasImages)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout())
	defer cancel()

	status, raw, err := p.post(ctx, body)
	if err != nil {
		p.Logger().Warn("analysis request failed", zap.String("model", body.Model), zap.Error(err))
		return nil, providers.TransportError(p.ID(), err)
	}
	if status != http.StatusOK {
		perr := providers.ClassifyResponse(p.ID(), status, raw, p.Cfg.StatusOverrides)
		p.Logger().Warn("analysis request rejected",
			zap.String("model", body.Model),
			zap.Int("status", status),
			zap.String("kind", string(perr.Kind)))
		return nil, perr
	}

	var env providers.ChatResponse
	if perr := p.decodeEnvelope(status, raw, &env); perr != nil {
		return nil, perr
	}

	var content string
	if len(env.Choices) > 0 {
		content = providers.ContentText(env.Choices[0].Message.Content)
	}
	metadata, perr := providers.ParseMetadata(p.ID(), content)
	if perr != nil {
		p.Logger().Debug("model answer could not be normalized",
			zap.String("kind", string(perr.Kind)),
			zap.Int("content_length", len(content)))
		return nil, perr
	}

	p.Logger().Debug("analysis completed", zap.String("model", body.Model), zap.Int("fields", len(metadata)))
	return providers.NewResult(p.ID(), body.Model, env.Model, metadata, providers.DecodeUsage(env.Usage)), nil
}

// TestConnection 检查凭据与连通性：未配置时不发请求，否则发送一个最小请求。
func (p *Provider) TestConnection(ctx context.Context) analyzer.ConnectionResult {
	if !p.Configured() {
		return p.NotConfiguredResult()
	}

	s := p.Resolve(analyzer.Options{})
	body := providers.ChatRequest{
		Model: s.Model,
		Messages: []providers.ChatMessage{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: providers.TestMaxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, p.TestTimeout())
	defer cancel()

	status, raw, err := p.post(ctx, body)
	if err != nil {
		return p.FailedResult(providers.TransportError(p.ID(), err))
	}
	if status != http.StatusOK {
		return p.FailedResult(providers.ClassifyResponse(p.ID(), status, raw, p.Cfg.StatusOverrides))
	}
	if perr := p.envelopeError(status, raw); perr != nil {
		return p.FailedResult(perr)
	}
	return p.ConnectedResult(s.Model)
}

// decodeEnvelope 解码 200 响应信封。信封不是 JSON 为 parse_error，
// 携带 error.message 为 unknown_api_error。
func (p *Provider) decodeEnvelope(status int, raw []byte, env *providers.ChatResponse) *analyzer.ProviderError {
	if err := json.Unmarshal(raw, env); err != nil {
		return p.Error(analyzer.ErrParseError, "invalid response envelope: "+err.Error()).WithCause(err)
	}
	if env.Error != nil && env.Error.Message != "" {
		return p.Error(analyzer.ErrUnknownAPIError, env.Error.Message).WithHTTPStatus(status)
	}
	return nil
}

// envelopeError 连通性检查只关心信封是否报错。
func (p *Provider) envelopeError(status int, raw []byte) *analyzer.ProviderError {
	var env providers.ChatResponse
	return p.decodeEnvelope(status, raw, &env)
}

// post sends one request and returns the status and body. A non-nil error means no
// status was obtained (or the body could not be read).
func (p *Provider) post(ctx context.Context, body providers.ChatRequest) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq, p.Config().APIKey)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
