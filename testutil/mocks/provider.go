// MockProvider 的元数据分析提供者测试模拟实现。
//
// 支持固定元数据、错误注入与调用记录。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/docmeta/analyzer"
)

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Operation string
	Prompt    string
	Images    int
	Options   analyzer.Options
}

// MockProvider 是 analyzer.Provider 的模拟实现
type MockProvider struct {
	mu sync.RWMutex

	id       string
	vision   bool
	metadata map[string]any
	usage    map[string]any
	err      *analyzer.ProviderError
	conn     analyzer.ConnectionResult
	calls    []MockProviderCall
}

var _ analyzer.Provider = (*MockProvider)(nil)

// NewMockProvider 创建新的 MockProvider
func NewMockProvider(id string) *MockProvider {
	return &MockProvider{
		id:       id,
		vision:   true,
		metadata: map[string]any{"title": "Mock"},
		usage:    map[string]any{"prompt_tokens": 10, "completion_tokens": 20},
		conn:     analyzer.ConnectionResult{Success: true, Message: "ok"},
	}
}

// WithMetadata 设置固定返回的元数据
func (m *MockProvider) WithMetadata(md map[string]any) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata = md
	return m
}

// WithUsage 设置返回的用量
func (m *MockProvider) WithUsage(usage map[string]any) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = usage
	return m
}

// WithError 设置返回错误
func (m *MockProvider) WithError(err *analyzer.ProviderError) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithVision 设置视觉能力
func (m *MockProvider) WithVision(v bool) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vision = v
	return m
}

// WithConnection 设置 TestConnection 的结果
func (m *MockProvider) WithConnection(res analyzer.ConnectionResult) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = res
	return m
}

// ID 返回 Provider 标识
func (m *MockProvider) ID() string { return m.id }

// Name 返回显示名称
func (m *MockProvider) Name() string { return "Mock " + m.id }

// AvailableModels 返回模型目录
func (m *MockProvider) AvailableModels() []analyzer.ModelInfo {
	return []analyzer.ModelInfo{{ID: "mock-model", Name: "Mock Model"}}
}

// DefaultModel 返回默认模型
func (m *MockProvider) DefaultModel() string { return "mock-model" }

// SupportsVision 返回视觉能力
func (m *MockProvider) SupportsVision() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vision
}

// Pricing 返回固定价格
func (m *MockProvider) Pricing(string) analyzer.Pricing {
	return analyzer.Pricing{Input: 0.001, Output: 0.002}
}

// AnalyzeText 记录调用并返回预设结果
func (m *MockProvider) AnalyzeText(_ context.Context, _, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return m.result(MockProviderCall{Operation: "analyze_text", Prompt: prompt, Options: opts})
}

// AnalyzeImage 记录调用并返回预设结果
func (m *MockProvider) AnalyzeImage(_ context.Context, _ analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return m.result(MockProviderCall{Operation: "analyze_image", Prompt: prompt, Images: 1, Options: opts})
}

// AnalyzeImages 记录调用并返回预设结果
func (m *MockProvider) AnalyzeImages(_ context.Context, images []analyzer.Image, prompt string, opts analyzer.Options) (*analyzer.AnalysisResult, error) {
	return m.result(MockProviderCall{Operation: "analyze_images", Prompt: prompt, Images: len(images), Options: opts})
}

// TestConnection 返回预设的连通性结果
func (m *MockProvider) TestConnection(context.Context) analyzer.ConnectionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockProviderCall{Operation: "test_connection"})
	return m.conn
}

func (m *MockProvider) result(call MockProviderCall) (*analyzer.AnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	if m.err != nil {
		return nil, m.err
	}
	model := call.Options.Model
	if model == "" {
		model = "mock-model"
	}
	return &analyzer.AnalysisResult{
		Metadata: m.metadata,
		Usage:    m.usage,
		Model:    model,
		Provider: m.id,
	}, nil
}

// Calls 返回调用记录的副本
func (m *MockProvider) Calls() []MockProviderCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}
