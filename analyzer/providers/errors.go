package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/tidwall/gjson"
)

// 常见且可操作的错误使用统一文案，便于调用方给出一致的提示。
const (
	MsgUnauthorized       = "Invalid or expired API key. Please check your credentials."
	MsgRateLimited        = "Rate limit exceeded. Please wait a moment and try again."
	MsgServiceUnavailable = "The service is temporarily unavailable. Please try again later."
)

// baseline 状态码到错误分类的基础映射，适配器扩展不能覆盖这些条目。
var baseline = map[int]analyzer.ErrorKind{
	http.StatusUnauthorized:        analyzer.ErrUnauthorized,
	http.StatusTooManyRequests:     analyzer.ErrRateLimited,
	http.StatusInternalServerError: analyzer.ErrServiceUnavailable,
	http.StatusServiceUnavailable:  analyzer.ErrServiceUnavailable,
}

// StatusOverrides 适配器对基础映射的扩展（如 529 → service_unavailable）。
type StatusOverrides map[int]analyzer.ErrorKind

// ClassifyStatus 将非 200 的 HTTP 状态映射为 ProviderError。
// 401/429/5xx 使用统一文案；其余状态保留服务商原始消息，缺失时使用通用兜底。
func ClassifyStatus(provider string, status int, vendorMsg string, overrides StatusOverrides) *analyzer.ProviderError {
	kind, ok := baseline[status]
	if !ok {
		kind, ok = overrides[status]
	}
	if !ok {
		kind = analyzer.ErrUnknownAPIError
	}

	msg := genericMessage(kind)
	if msg == "" {
		msg = strings.TrimSpace(vendorMsg)
		if msg == "" {
			msg = fmt.Sprintf("API request failed with status %d", status)
		}
	}

	return analyzer.NewError(kind, msg).
		WithProvider(provider).
		WithHTTPStatus(status)
}

// ClassifyResponse 读取错误体后分类。
func ClassifyResponse(provider string, status int, body []byte, overrides StatusOverrides) *analyzer.ProviderError {
	return ClassifyStatus(provider, status, ReadErrorMessage(body), overrides)
}

// TransportError 在拿到 HTTP 状态之前失败（DNS、连接、超时、读取响应体）。
func TransportError(provider string, err error) *analyzer.ProviderError {
	msg := err.Error()
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "request timed out: " + msg
	}
	return analyzer.NewError(analyzer.ErrTransportError, msg).
		WithProvider(provider).
		WithCause(err)
}

// ReadErrorMessage 从错误响应体中提取服务商消息。
// 依次尝试 error.message、message、error（字符串），都没有时回退到原始文本。
func ReadErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error"} {
			r := gjson.GetBytes(body, path)
			if r.Type == gjson.String && strings.TrimSpace(r.String()) != "" {
				return r.String()
			}
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

func genericMessage(kind analyzer.ErrorKind) string {
	switch kind {
	case analyzer.ErrUnauthorized:
		return MsgUnauthorized
	case analyzer.ErrRateLimited:
		return MsgRateLimited
	case analyzer.ErrServiceUnavailable:
		return MsgServiceUnavailable
	}
	return ""
}
