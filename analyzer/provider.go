package analyzer

import "context"

// ModelInfo 模型目录中的一项，ID 用于请求，Name 用于展示。
type ModelInfo struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Pricing 每 1000 token 的美元价格。
type Pricing struct {
	Input  float64 `json:"input" yaml:"input"`
	Output float64 `json:"output" yaml:"output"`
}

// Options 单次调用的可调参数，零值表示沿用 Provider 配置。
type Options struct {
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Image 图像输入。Data 与 URL 二选一，Data 优先。
// MIMEType 为空时由适配器根据内容探测。
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Empty reports whether the image carries neither bytes nor a URL.
func (i Image) Empty() bool {
	return len(i.Data) == 0 && i.URL == ""
}

// AnalysisResult 一次成功分析的结果。Usage 永远不为 nil。
type AnalysisResult struct {
	Metadata map[string]any `json:"metadata"`
	Usage    map[string]any `json:"usage"`
	Model    string         `json:"model"`
	Provider string         `json:"provider"`
}

// ConnectionResult 连通性与鉴权检查结果。
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Provider 定义了统一的元数据分析适配接口。
//
// Analyze* 返回的 error 始终是 *ProviderError；每次调用最多一次出站请求。
type Provider interface {
	// ID 返回稳定的唯一标识，用于结果标记与注册表查找
	ID() string

	// Name 返回展示名称
	Name() string

	// AvailableModels 按展示顺序返回模型目录
	AvailableModels() []ModelInfo

	// DefaultModel 返回默认模型，必须出现在 AvailableModels 中
	DefaultModel() string

	// SupportsVision 静态能力标记，调用图像分析前应先检查
	SupportsVision() bool

	// Pricing 返回模型价格，未知模型返回默认档位
	Pricing(model string) Pricing

	// AnalyzeText 分析文本内容
	AnalyzeText(ctx context.Context, text, prompt string, opts Options) (*AnalysisResult, error)

	// AnalyzeImage 分析单张图像
	AnalyzeImage(ctx context.Context, image Image, prompt string, opts Options) (*AnalysisResult, error)

	// AnalyzeImages 在一次请求中分析多张图像
	AnalyzeImages(ctx context.Context, images []Image, prompt string, opts Options) (*AnalysisResult, error)

	// TestConnection 检查配置与连通性，从不返回错误
	TestConnection(ctx context.Context) ConnectionResult
}
