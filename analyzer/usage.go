package analyzer

// 各服务商 usage 字段命名不同，按 (输入, 输出) 成对列出。
var usageKeyPairs = [][2]string{
	{"prompt_tokens", "completion_tokens"},       // OpenAI 兼容
	{"input_tokens", "output_tokens"},            // Anthropic
	{"promptTokenCount", "candidatesTokenCount"}, // Gemini
}

// UsageTokens 从原始 usage 映射中读取输入/输出 token 数，缺失时为 0。
func UsageTokens(usage map[string]any) (input, output int) {
	for _, pair := range usageKeyPairs {
		in, okIn := toInt(usage[pair[0]])
		out, okOut := toInt(usage[pair[1]])
		if okIn || okOut {
			return in, out
		}
	}
	return 0, 0
}

// EstimateCost 根据价格与 usage 估算本次调用的美元成本。
func EstimateCost(p Pricing, usage map[string]any) float64 {
	in, out := UsageTokens(usage)
	return float64(in)/1000*p.Input + float64(out)/1000*p.Output
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}
