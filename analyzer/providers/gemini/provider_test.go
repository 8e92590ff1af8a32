package gemini

import (
	"net/http"
	"strings"
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

func newTestProvider(t *testing.T, srv *mocks.Server) *GeminiProvider {
	t.Helper()
	return NewGeminiProvider(providers.ProviderConfig{APIKey: "AIza-test", BaseURL: srv.URL}, zap.NewNop())
}

func TestGeminiProvider_Identity(t *testing.T) {
	p := NewGeminiProvider(providers.ProviderConfig{}, zap.NewNop())
	assert.Equal(t, "gemini", p.ID())
	assert.True(t, p.SupportsVision())

	found := false
	for _, m := range p.AvailableModels() {
		found = found || m.ID == p.DefaultModel()
	}
	assert.True(t, found)
	assert.Equal(t, Vendor.Pricing.Default, p.Pricing("gemini-unknown"))
}

func TestGeminiProvider_AnalyzeText(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.GeminiResponse("gemini-2.5-flash-001", `{"title":"Doc A"}`))
	p := newTestProvider(t, srv)

	res, err := p.AnalyzeText(testutil.TestContext(t), "body", "Extract", analyzer.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Doc A"}, res.Metadata)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "gemini-2.5-flash-001", res.Model)

	in, out := analyzer.UsageTokens(res.Usage)
	assert.Equal(t, 11, in)
	assert.Equal(t, 7, out)

	req := srv.Last(t)
	assert.True(t, strings.HasSuffix(req.Path, "models/gemini-2.5-flash:generateContent"), req.Path)

	body := req.JSON(t)
	genCfg := body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.Equal(t, float64(providers.DefaultMaxTokens), genCfg["maxOutputTokens"])

	sys := body["systemInstruction"].(map[string]any)["parts"].([]any)
	assert.Equal(t, providers.SystemPrompt, sys[0].(map[string]any)["text"])
}

func TestGeminiProvider_AnalyzeImages_InlineParts(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.GeminiResponse("gemini-2.5-flash", `{"n":2}`))
	p := newTestProvider(t, srv)

	images := []analyzer.Image{{Data: fixtures.PNG()}, {Data: fixtures.JPEG()}}
	_, err := p.AnalyzeImages(testutil.TestContext(t), images, "Count", analyzer.Options{})
	require.NoError(t, err)

	contents := srv.Last(t).JSON(t)["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 3)
	assert.Equal(t, "Count", parts[0].(map[string]any)["text"])
	assert.Equal(t, "image/png", parts[1].(map[string]any)["inlineData"].(map[string]any)["mimeType"])
	assert.Equal(t, "image/jpeg", parts[2].(map[string]any)["inlineData"].(map[string]any)["mimeType"])
}

func TestGeminiProvider_RejectsImageURLs(t *testing.T) {
	client, tr := mocks.NewCountingClient()
	p := NewGeminiProvider(providers.ProviderConfig{APIKey: "AIza-test"}, zap.NewNop())
	p.Client = client

	_, err := p.AnalyzeImage(testutil.TestContext(t), analyzer.Image{URL: "https://example.com/a.png"}, "x", analyzer.Options{})
	assert.Equal(t, analyzer.ErrInvalidRequest, analyzer.KindOf(err))
	assert.Zero(t, tr.Calls())
}

func TestGeminiProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind analyzer.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, fixtures.GeminiError(401, "UNAUTHENTICATED", "API key not valid"), analyzer.ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, fixtures.GeminiError(429, "RESOURCE_EXHAUSTED", "quota"), analyzer.ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, fixtures.GeminiError(503, "UNAVAILABLE", "overloaded"), analyzer.ErrServiceUnavailable},
		{"bad gateway", http.StatusBadGateway, fixtures.GeminiError(502, "UNAVAILABLE", "bad gateway"), analyzer.ErrServiceUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, fixtures.GeminiError(504, "DEADLINE_EXCEEDED", "gateway timeout"), analyzer.ErrServiceUnavailable},
		{"bad request", http.StatusBadRequest, fixtures.GeminiError(400, "INVALID_ARGUMENT", "bad model"), analyzer.ErrUnknownAPIError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mocks.NewServer(t, tt.status, tt.body)
			p := newTestProvider(t, srv)

			_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
			perr, ok := analyzer.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, tt.status, perr.HTTPStatus)
		})
	}
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, `{"candidates":[]}`)
	p := newTestProvider(t, srv)

	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	assert.Equal(t, analyzer.ErrEmptyResponse, analyzer.KindOf(err))
}

func TestGeminiProvider_TestConnection(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		client, tr := mocks.NewCountingClient()
		p := NewGeminiProvider(providers.ProviderConfig{}, zap.NewNop())
		p.Client = client

		res := p.TestConnection(testutil.TestContext(t))
		assert.False(t, res.Success)
		assert.Equal(t, "Gemini API key is not configured", res.Message)
		assert.Zero(t, tr.Calls())
	})

	t.Run("success", func(t *testing.T) {
		srv := mocks.NewServer(t, http.StatusOK, fixtures.GeminiResponse("gemini-2.5-flash", "Hi"))
		p := newTestProvider(t, srv)

		res := p.TestConnection(testutil.TestContext(t))
		assert.True(t, res.Success)
		assert.Equal(t, 1, srv.Calls())
	})
}
