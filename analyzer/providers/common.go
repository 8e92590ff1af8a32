package providers

import (
	"encoding/json"
	"net/http"
)

// OpenAI 兼容 API 通用类型
// 这些类型被 DeepSeek、OpenAI、Qwen 等兼容 OpenAI 的提供者所使用.

// ChatMessage 表示 OpenAI 兼容的消息格式。Content 为字符串或 []ContentPart。
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart 多模态消息中的一段内容.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

// ImageRef image_url 段的地址，可以是 data URL.
type ImageRef struct {
	URL string `json:"url"`
}

// ResponseFormat 结构化输出提示.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest 表示 OpenAI 兼容的聊天完成请求.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatChoice 表示 OpenAI 兼容响应中的单个选项.
type ChatChoice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// ChatResponse 表示 OpenAI 兼容的聊天完成响应，usage 保留原始 JSON.
type ChatResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []ChatChoice    `json:"choices"`
	Usage   json.RawMessage `json:"usage,omitempty"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// JSONObjectFormat 要求只输出 JSON 对象的 response_format.
func JSONObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}

// BearerTokenHeaders 是标准的 Bearer token 认证 header 构建函数。
func BearerTokenHeaders(r *http.Request, apiKey string) {
	r.Header.Set("Authorization", "Bearer "+apiKey)
	r.Header.Set("Content-Type", "application/json")
}
