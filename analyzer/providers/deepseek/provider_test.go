package deepseek

import (
	"net/http"
	"testing"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/providers"
	"github.com/BaSui01/docmeta/testutil"
	"github.com/BaSui01/docmeta/testutil/fixtures"
	"github.com/BaSui01/docmeta/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, baseURL string) *DeepSeekProvider {
	t.Helper()
	return NewDeepSeekProvider(providers.ProviderConfig{APIKey: "sk-test", BaseURL: baseURL}, zap.NewNop())
}

func TestDeepSeekProvider_Identity(t *testing.T) {
	p := NewDeepSeekProvider(providers.ProviderConfig{}, zap.NewNop())
	assert.Equal(t, "deepseek", p.ID())
	assert.Equal(t, "DeepSeek", p.Name())
	assert.False(t, p.SupportsVision())
	assert.Equal(t, "https://api.deepseek.com", p.BaseURL)

	var ids []string
	for _, m := range p.AvailableModels() {
		ids = append(ids, m.ID)
	}
	assert.Contains(t, ids, p.DefaultModel())
	assert.Equal(t, []string{"deepseek-chat", "deepseek-reasoner"}, ids)
}

func TestDeepSeekProvider_Pricing(t *testing.T) {
	p := NewDeepSeekProvider(providers.ProviderConfig{}, zap.NewNop())
	assert.Equal(t, analyzer.Pricing{Input: 0.00055, Output: 0.00219}, p.Pricing("deepseek-reasoner"))
	assert.Equal(t, Vendor.Pricing.Default, p.Pricing("deepseek-unknown"))
}

func TestDeepSeekProvider_VisionUnsupported(t *testing.T) {
	for _, cfg := range []providers.ProviderConfig{{}, {APIKey: "sk-test"}} {
		client, tr := mocks.NewCountingClient()
		p := NewDeepSeekProvider(cfg, zap.NewNop())
		p.Client = client
		ctx := testutil.TestContext(t)

		_, err := p.AnalyzeImage(ctx, analyzer.Image{Data: fixtures.PNG()}, "describe", analyzer.Options{})
		assert.Equal(t, analyzer.ErrVisionUnsupported, analyzer.KindOf(err))

		_, err = p.AnalyzeImages(ctx, []analyzer.Image{{Data: fixtures.PNG()}, {Data: fixtures.JPEG()}}, "describe", analyzer.Options{})
		assert.Equal(t, analyzer.ErrVisionUnsupported, analyzer.KindOf(err))

		assert.Zero(t, tr.Calls())
	}
}

func TestDeepSeekProvider_NotConfigured(t *testing.T) {
	client, tr := mocks.NewCountingClient()
	p := NewDeepSeekProvider(providers.ProviderConfig{}, zap.NewNop())
	p.Client = client

	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "extract", analyzer.Options{})
	perr, ok := analyzer.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, analyzer.ErrNotConfigured, perr.Kind)
	assert.Equal(t, "DeepSeek API key is not configured", perr.Message)

	res := p.TestConnection(testutil.TestContext(t))
	assert.False(t, res.Success)
	assert.Equal(t, "DeepSeek API key is not configured", res.Message)

	assert.Zero(t, tr.Calls())
}

func TestDeepSeekProvider_AnalyzeText(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("deepseek-chat", `{"title":"Doc A"}`))
	p := newTestProvider(t, srv.URL)

	res, err := p.AnalyzeText(testutil.TestContext(t), "Quarterly report...", "Extract title", analyzer.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Doc A"}, res.Metadata)
	assert.Equal(t, p.ID(), res.Provider)
	assert.Equal(t, "deepseek-chat", res.Model)

	req := srv.Last(t)
	assert.Equal(t, "/chat/completions", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	body := req.JSON(t)
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
}

func TestDeepSeekProvider_FencedAnswer(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK,
		fixtures.ChatCompletion("deepseek-chat", "Sure, here you go:\n```json\n{\"a\":1}\n```\nAnything else?"))
	p := newTestProvider(t, srv.URL)

	res, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, res.Metadata)
}

func TestDeepSeekProvider_EmptyAnswer(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("deepseek-chat", ""))
	p := newTestProvider(t, srv.URL)

	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	assert.Equal(t, analyzer.ErrEmptyResponse, analyzer.KindOf(err))
}

func TestDeepSeekProvider_Unauthorized(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusUnauthorized, fixtures.ErrorBody("Authentication Fails (no such user)"))
	p := newTestProvider(t, srv.URL)

	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	perr, ok := analyzer.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, analyzer.ErrUnauthorized, perr.Kind)
	assert.Equal(t, providers.MsgUnauthorized, perr.Message)
	assert.Equal(t, http.StatusUnauthorized, perr.HTTPStatus)
}

func TestDeepSeekProvider_ReasonerDropsJSONMode(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("deepseek-reasoner", `{"a":1}`))
	p := newTestProvider(t, srv.URL)

	res, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{Model: "deepseek-reasoner"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", res.Model)

	body := srv.Last(t).JSON(t)
	assert.Equal(t, "deepseek-reasoner", body["model"])
	assert.NotContains(t, body, "response_format")
	assert.NotContains(t, body, "temperature")
}

func TestDeepSeekProvider_TestConnection(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("deepseek-chat", "Hello!"))
	p := newTestProvider(t, srv.URL)

	res := p.TestConnection(testutil.TestContext(t))
	assert.True(t, res.Success)
	assert.Equal(t, 1, srv.Calls())
}

func TestDeepSeekProvider_TestConnection_ErrorInOKBody(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ErrorBody("model not found"))
	p := newTestProvider(t, srv.URL)

	res := p.TestConnection(testutil.TestContext(t))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "model not found")

	// 同一响应下分析调用报告同样的服务端错误
	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	assert.Equal(t, analyzer.ErrUnknownAPIError, analyzer.KindOf(err))
	assert.Equal(t, 2, srv.Calls())
}

func TestDeepSeekProvider_ArrayAnswerIsParseError(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK,
		fixtures.ChatCompletion("deepseek-chat", `[{"title":"A"},{"title":"B"}]`))
	p := newTestProvider(t, srv.URL)

	res, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	assert.Nil(t, res)
	assert.Equal(t, analyzer.ErrParseError, analyzer.KindOf(err))
}
