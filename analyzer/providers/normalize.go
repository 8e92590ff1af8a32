package providers

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
)

// fencePattern 匹配 ```json ... ``` 或 ``` ... ``` 代码块。
var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\r?\\n?(.*?)```")

// maxCandidates 花括号扫描最多尝试的起点数，限制病态输入的扫描成本。
const maxCandidates = 64

// ExtractJSON 从模型回答中尽力提取一个 JSON 对象。
//
// 依次尝试：整段严格解析、代码块内容、第一个能解析的平衡花括号片段。
// 只接受 JSON 对象；整段或代码块是数组等其他 JSON 值时直接失败，
// 不会从数组中挑出某个元素。提取不到时返回 false，绝不返回部分结果。
func ExtractJSON(text string) (map[string]any, bool) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if text == "" {
		return nil, false
	}

	if v, ok := decodeValue(text); ok {
		return asObject(v)
	}

	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		if v, ok := decodeValue(strings.TrimSpace(m[1])); ok {
			return asObject(v)
		}
	}

	start := strings.IndexAny(text, "{[")
	for tried := 0; start >= 0 && tried < maxCandidates; tried++ {
		end := matchBrace(text, start)
		if end < 0 {
			// 到结尾仍未闭合，之后的起点都在这段未闭合内容之中
			break
		}
		segment := text[start : end+1]
		if v, ok := decodeValue(segment); ok {
			if obj, isObj := v.(map[string]any); isObj {
				return obj, true
			}
			// 对象数组是整体回答，不取其中的元素
			if containsObject(v) {
				return nil, false
			}
		}
		next := strings.IndexAny(text[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, false
}

// matchBrace 返回与 text[start] 处 '{' 或 '[' 配对的闭合符下标，跳过字符串字面量。
// 不配对时返回 -1。
func matchBrace(text string, start int) int {
	open := text[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeValue 严格解析一个完整的 JSON 值，值之后不允许再有内容。
func decodeValue(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if strings.TrimSpace(s[dec.InputOffset():]) != "" {
		return nil, false
	}
	return v, true
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, false
	}
	return obj, true
}

func containsObject(v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range arr {
		if _, isObj := e.(map[string]any); isObj {
			return true
		}
	}
	return false
}

// ParseMetadata 把模型回答解析为结构化元数据。空回答为 empty_response，
// 无法恢复出 JSON 对象为 parse_error。
func ParseMetadata(provider, content string) (map[string]any, *analyzer.ProviderError) {
	if strings.TrimSpace(content) == "" {
		return nil, analyzer.NewError(analyzer.ErrEmptyResponse, "the model returned an empty response").
			WithProvider(provider)
	}
	obj, ok := ExtractJSON(content)
	if !ok {
		return nil, analyzer.NewError(analyzer.ErrParseError, "failed to parse a JSON object from the model response").
			WithProvider(provider)
	}
	return obj, nil
}

// ContentText 取出消息 content 的文本。content 可以是字符串，也可以是
// [{"type":"text","text":"..."}] 形式的分段数组。
func ContentText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range parts {
		if p.Type == "" || p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// DecodeUsage 把原始 usage 块解码为映射，缺失或无法解码时返回空映射。
func DecodeUsage(raw []byte) map[string]any {
	usage := map[string]any{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return usage
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
		return decoded
	}
	return usage
}

// NewResult 组装 AnalysisResult。服务商未回报模型时使用请求的模型。
func NewResult(provider, requestedModel, reportedModel string, metadata, usage map[string]any) *analyzer.AnalysisResult {
	if usage == nil {
		usage = map[string]any{}
	}
	return &analyzer.AnalysisResult{
		Metadata: metadata,
		Usage:    usage,
		Model:    ChooseModel(reportedModel, requestedModel, ""),
		Provider: provider,
	}
}
