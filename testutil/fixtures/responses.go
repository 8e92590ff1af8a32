// Package fixtures 提供各服务商响应信封的测试数据。
package fixtures

import (
	"encoding/json"
	"fmt"
)

// ChatCompletion 返回 OpenAI 兼容的 chat completion 响应体，content 为字符串。
func ChatCompletion(model, content string) string {
	return mustJSON(map[string]any{
		"id":     "chatcmpl-001",
		"object": "chat.completion",
		"model":  model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 8,
			"total_tokens":      20,
		},
	})
}

// ChatCompletionParts 返回 content 为文本分段数组的响应体。
func ChatCompletionParts(model string, texts ...string) string {
	parts := make([]map[string]any, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, map[string]any{"type": "text", "text": t})
	}
	return mustJSON(map[string]any{
		"model": model,
		"choices": []map[string]any{{
			"message": map[string]any{"role": "assistant", "content": parts},
		}},
	})
}

// ChatCompletionNoUsage 返回不带 usage 与 model 的最小响应体。
func ChatCompletionNoUsage(content string) string {
	return mustJSON(map[string]any{
		"choices": []map[string]any{{
			"message": map[string]any{"role": "assistant", "content": content},
		}},
	})
}

// ErrorBody 返回 {"error":{"message":...}} 形式的错误体。
func ErrorBody(message string) string {
	return mustJSON(map[string]any{
		"error": map[string]any{"message": message, "type": "invalid_request_error"},
	})
}

// AnthropicMessage 返回 Messages API 的响应体。
func AnthropicMessage(model, text string) string {
	return mustJSON(map[string]any{
		"id":            "msg_001",
		"type":          "message",
		"role":          "assistant",
		"model":         model,
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"usage": map[string]any{"input_tokens": 15, "output_tokens": 9},
	})
}

// AnthropicError 返回 Messages API 的错误体。
func AnthropicError(errType, message string) string {
	return mustJSON(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": errType, "message": message},
	})
}

// GeminiResponse 返回 generateContent 的响应体。
func GeminiResponse(modelVersion, text string) string {
	return mustJSON(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     11,
			"candidatesTokenCount": 7,
			"totalTokenCount":      18,
		},
		"modelVersion": modelVersion,
	})
}

// GeminiError 返回 Google API 风格的错误体。
func GeminiError(code int, status, message string) string {
	return mustJSON(map[string]any{
		"error": map[string]any{"code": code, "message": message, "status": status},
	})
}

// PNG 返回一个最小的 PNG 文件头（足以被 http.DetectContentType 识别）。
func PNG() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")...)
}

// JPEG 返回一个最小的 JPEG 文件头。
func JPEG() []byte {
	return []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("fixtures: %v", err))
	}
	return string(data)
}
