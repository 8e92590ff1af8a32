package analyzer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/internal/ctxkeys"
	"github.com/BaSui01/docmeta/internal/metrics"
	"github.com/BaSui01/docmeta/testutil"
	"github.com/BaSui01/docmeta/testutil/mocks"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordedAnalysis struct {
	provider, model, operation, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	analyses []recordedAnalysis
	tokens   [][2]int
	costs    []float64
	checks   []bool
}

func (r *fakeRecorder) RecordAnalysis(provider, model, operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, recordedAnalysis{provider, model, operation, outcome})
}

func (r *fakeRecorder) RecordTokens(_, _ string, in, out int, cost float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, [2]int{in, out})
	r.costs = append(r.costs, cost)
}

func (r *fakeRecorder) RecordConnectionCheck(_ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, success)
}

func TestInstrument_Success(t *testing.T) {
	mock := mocks.NewMockProvider("deepseek").
		WithMetadata(map[string]any{"title": "Doc A"}).
		WithUsage(map[string]any{"prompt_tokens": float64(1000), "completion_tokens": float64(500)})
	rec := &fakeRecorder{}
	core, logs := observer.New(zapcore.InfoLevel)

	p := analyzer.Instrument(mock, rec, zap.New(core))
	res, err := p.AnalyzeText(testutil.TestContext(t), "doc", "prompt", analyzer.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Doc A"}, res.Metadata)
	assert.Equal(t, 1, mock.CallCount(), "delegates exactly once")

	require.Len(t, rec.analyses, 1)
	assert.Equal(t, recordedAnalysis{"deepseek", "mock-model", analyzer.OpAnalyzeText, "ok"}, rec.analyses[0])
	assert.Equal(t, [][2]int{{1000, 500}}, rec.tokens)
	// 0.001 * 1 + 0.002 * 0.5
	assert.InDelta(t, 0.002, rec.costs[0], 1e-9)

	entries := logs.FilterMessage("analysis completed").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "deepseek", ctx["provider"])
	assert.NotEmpty(t, ctx["request_id"])
}

func TestInstrument_ErrorPassThrough(t *testing.T) {
	want := analyzer.NewError(analyzer.ErrRateLimited, "slow down").WithProvider("openai")
	mock := mocks.NewMockProvider("openai").WithError(want)
	rec := &fakeRecorder{}

	p := analyzer.Instrument(mock, rec, nil)
	res, err := p.AnalyzeImages(testutil.TestContext(t), []analyzer.Image{{Data: []byte{1}}, {Data: []byte{2}}}, "p", analyzer.Options{Model: "gpt-4o"})
	assert.Nil(t, res)
	assert.Same(t, want, err)

	require.Len(t, rec.analyses, 1)
	assert.Equal(t, recordedAnalysis{"openai", "gpt-4o", analyzer.OpAnalyzeImages, "rate_limited"}, rec.analyses[0])
	assert.Empty(t, rec.tokens)
	assert.Equal(t, 2, mock.Calls()[0].Images)
}

func TestInstrument_PassesThroughCapabilities(t *testing.T) {
	mock := mocks.NewMockProvider("qwen").WithVision(false)
	p := analyzer.Instrument(mock, nil, nil)

	assert.Equal(t, "qwen", p.ID())
	assert.False(t, p.SupportsVision())
	assert.Equal(t, mock.DefaultModel(), p.DefaultModel())
	assert.Same(t, mock, p.Unwrap())

	_, err := p.AnalyzeImage(testutil.TestContext(t), analyzer.Image{Data: []byte{1}}, "p", analyzer.Options{})
	assert.NoError(t, err)
}

func TestInstrument_TestConnection(t *testing.T) {
	mock := mocks.NewMockProvider("gemini").WithConnection(analyzer.ConnectionResult{Success: false, Message: "nope"})
	rec := &fakeRecorder{}

	res := analyzer.Instrument(mock, rec, nil).TestConnection(testutil.TestContext(t))
	assert.Equal(t, analyzer.ConnectionResult{Success: false, Message: "nope"}, res)
	assert.Equal(t, []bool{false}, rec.checks)
}

func TestInstrument_WithCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("docmeta", reg, nil)
	p := analyzer.Instrument(mocks.NewMockProvider("anthropic"), collector, nil)

	for i := 0; i < 3; i++ {
		_, err := p.AnalyzeText(testutil.TestContext(t), "doc", "p", analyzer.Options{})
		require.NoError(t, err)
	}
	p.TestConnection(testutil.TestContext(t))

	n, err := promtest.GatherAndCount(reg, "docmeta_analysis_requests_total", "docmeta_connection_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInstrument_ReusesCallerRequestID(t *testing.T) {
	mock := mocks.NewMockProvider("qwen").WithMetadata(map[string]any{"a": float64(1)})
	core, logs := observer.New(zapcore.InfoLevel)

	p := analyzer.Instrument(mock, nil, zap.New(core))
	ctx := ctxkeys.WithRequestID(testutil.TestContext(t), "run-42")
	_, err := p.AnalyzeText(ctx, "doc", "", analyzer.Options{})
	require.NoError(t, err)
	p.TestConnection(ctx)

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, "run-42", e.ContextMap()["request_id"])
	}
}
