package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter 统一的 token 计数接口。
type Counter interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) int
	// Name 返回计数器名称.
	Name() string
}

// encodingPrefixes 模型前缀到 tiktoken 编码，最长前缀优先。
var encodingPrefixes = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"gpt-4.1", "o200k_base"},
	{"o1", "o200k_base"},
	{"o3", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5", "cl100k_base"},
}

var (
	counters   = make(map[string]*TiktokenCounter)
	countersMu sync.Mutex
)

// ForModel 返回适合模型的计数器。非 OpenAI 模型使用估算器。
func ForModel(model string) Counter {
	for _, e := range encodingPrefixes {
		if strings.HasPrefix(model, e.prefix) {
			return tiktokenFor(e.encoding)
		}
	}
	return NewEstimator()
}

// Estimate 估算模型处理 text 所需的输入 token 数。
func Estimate(model, text string) int {
	return ForModel(model).CountTokens(text)
}

// EstimateUsage 按 OpenAI 兼容的字段名构造一份预估 usage，
// 可直接交给 analyzer.EstimateCost。输出按 maxOutput 上限计。
func EstimateUsage(model, text string, maxOutput int) map[string]any {
	return map[string]any{
		"prompt_tokens":     Estimate(model, text),
		"completion_tokens": maxOutput,
	}
}

func tiktokenFor(encoding string) *TiktokenCounter {
	countersMu.Lock()
	defer countersMu.Unlock()
	c, ok := counters[encoding]
	if !ok {
		c = &TiktokenCounter{encoding: encoding, fallback: NewEstimator()}
		counters[encoding] = c
	}
	return c
}

// TiktokenCounter 基于 tiktoken 的计数器，延迟初始化，失败时回退到估算器。
type TiktokenCounter struct {
	encoding string
	fallback *Estimator

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// init lazily 初始化 tiktoken 编码(可以在第一次使用时下载数据).
func (t *TiktokenCounter) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// CountTokens 返回 tiktoken 计数，编码不可用时返回估算值
func (t *TiktokenCounter) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if err := t.init(); err != nil {
		return t.fallback.CountTokens(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Name 返回编码名称
func (t *TiktokenCounter) Name() string {
	return "tiktoken[" + t.encoding + "]"
}

// Estimator 基于字符数的估算器，区分 CJK 与其他字符。
type Estimator struct{}

// NewEstimator creates a character-count estimator.
func NewEstimator() *Estimator { return &Estimator{} }

// CountTokens CJK 约 1.5 字符/token，其余约 4 字符/token
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	total := utf8.RuneCountInString(text)
	cjk := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		}
	}
	estimated := int(float64(cjk)/1.5 + float64(total-cjk)/4.0)
	if estimated == 0 {
		estimated = 1
	}
	return estimated
}

// Name 返回估算器名称
func (e *Estimator) Name() string { return "estimator" }

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
