package analyzer

import (
	"errors"
	"fmt"
)

// ErrorKind 统一的错误分类，屏蔽各服务商的 HTTP 与错误体差异。
type ErrorKind string

const (
	ErrNotConfigured      ErrorKind = "not_configured"      // 缺少 API Key 等必要配置
	ErrVisionUnsupported  ErrorKind = "vision_unsupported"  // Provider 不支持图像分析
	ErrInvalidRequest     ErrorKind = "invalid_request"     // 调用方未提供可分析的内容
	ErrEmptyResponse      ErrorKind = "empty_response"      // 模型未返回文本
	ErrParseError         ErrorKind = "parse_error"         // 无法从回答中解析出 JSON 对象
	ErrTransportError     ErrorKind = "transport_error"     // 拿到状态码之前的网络失败
	ErrUnauthorized       ErrorKind = "unauthorized"        // 401
	ErrRateLimited        ErrorKind = "rate_limited"        // 429
	ErrServiceUnavailable ErrorKind = "service_unavailable" // 500/503 及适配器扩展的状态码
	ErrUnknownAPIError    ErrorKind = "unknown_api_error"   // 其他非 200 响应
)

// ProviderError 是所有 Provider 操作唯一的失败形态。
type ProviderError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	Provider   string    `json:"provider,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Cause      error     `json:"-"`
}

// NewError creates a ProviderError with the given kind and message.
func NewError(kind ErrorKind, message string) *ProviderError {
	return &ProviderError{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// WithProvider sets the provider id.
func (e *ProviderError) WithProvider(provider string) *ProviderError {
	e.Provider = provider
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *ProviderError) WithHTTPStatus(status int) *ProviderError {
	e.HTTPStatus = status
	return e
}

// WithCause adds a cause to the error.
func (e *ProviderError) WithCause(cause error) *ProviderError {
	e.Cause = cause
	return e
}

// Retryable 调用方可以稍后重试的错误（本包自身从不重试）。
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrServiceUnavailable, ErrTransportError:
		return true
	}
	return false
}

// IsConfigError 需要调用方修改配置或调用方式的错误。
func (e *ProviderError) IsConfigError() bool {
	return e.Kind == ErrNotConfigured || e.Kind == ErrVisionUnsupported
}

// AsProviderError extracts a *ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// KindOf returns the error kind, or "" when err is not a ProviderError.
func KindOf(err error) ErrorKind {
	if pe, ok := AsProviderError(err); ok {
		return pe.Kind
	}
	return ""
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if pe, ok := AsProviderError(err); ok {
		return pe.Retryable()
	}
	return false
}
