package mocks

import (
	"errors"
	"net/http"
	"sync/atomic"
)

// ErrUnexpectedCall 未设置 Handler 时 CountingTransport 返回的错误。
var ErrUnexpectedCall = errors.New("mocks: unexpected network call")

// CountingTransport 统计出站请求次数的 RoundTripper。
// Handler 为空时任何请求都会失败，用于断言"零网络调用"。
type CountingTransport struct {
	Handler func(*http.Request) (*http.Response, error)

	calls atomic.Int64
}

// RoundTrip implements http.RoundTripper.
func (t *CountingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	if t.Handler == nil {
		return nil, ErrUnexpectedCall
	}
	return t.Handler(req)
}

// Calls 返回已发生的请求次数。
func (t *CountingTransport) Calls() int {
	return int(t.calls.Load())
}

// NewCountingClient 返回使用 CountingTransport 的 http.Client。
func NewCountingClient() (*http.Client, *CountingTransport) {
	tr := &CountingTransport{}
	return &http.Client{Transport: tr}, tr
}

// FailingTransport 总是返回 Err 的 RoundTripper，模拟连接失败。
type FailingTransport struct {
	Err error
}

// RoundTrip implements http.RoundTripper.
func (t FailingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, t.Err
}
