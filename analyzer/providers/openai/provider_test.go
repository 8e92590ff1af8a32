package openai

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

func TestOpenAIProvider_Catalog(t *testing.T) {
	p := NewOpenAIProvider(providers.ProviderConfig{}, zap.NewNop())
	assert.Equal(t, "openai", p.ID())
	assert.True(t, p.SupportsVision())

	found := false
	for _, m := range p.AvailableModels() {
		found = found || m.ID == p.DefaultModel()
	}
	assert.True(t, found, "default model must be in the catalog")

	assert.Equal(t, analyzer.Pricing{Input: 0.0025, Output: 0.01}, p.Pricing("gpt-4o-2024-11-20"))
	assert.Equal(t, Vendor.Pricing.Default, p.Pricing("o9-preview"))
}

func TestOpenAIProvider_AnalyzeImage(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("gpt-4o-mini-2024-07-18", `{"subject":"cat"}`))
	p := NewOpenAIProvider(providers.ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, zap.NewNop())

	res, err := p.AnalyzeImage(testutil.TestContext(t), analyzer.Image{Data: fixtures.PNG()}, "What is in the picture?", analyzer.Options{})
	require.NoError(t, err)
	assert.Equal(t, "cat", res.Metadata["subject"])
	assert.Equal(t, "gpt-4o-mini-2024-07-18", res.Model)

	req := srv.Last(t)
	assert.Equal(t, "/v1/chat/completions", req.Path)
	parts := req.JSON(t)["messages"].([]any)[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}

func TestOpenAIProvider_GatewayTimeout(t *testing.T) {
	srv := mocks.NewServer(t, http.StatusGatewayTimeout, "upstream timed out")
	p := NewOpenAIProvider(providers.ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, zap.NewNop())

	_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
	assert.Equal(t, analyzer.ErrServiceUnavailable, analyzer.KindOf(err))
}
