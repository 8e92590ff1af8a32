package providers

import (
	"strings"

	"github.com/BaSui01/docmeta/analyzer"
)

// PricingTable 模型价格表（USD / 1K tokens）。
// 未识别的模型回落到 Default 档位，而不是报错。
type PricingTable struct {
	Models  map[string]analyzer.Pricing
	Default analyzer.Pricing
}

// Lookup 精确匹配优先，其次最长前缀匹配（如 "gpt-4o-2024-08-06" 命中 "gpt-4o"），
// 都不命中时返回默认档位。
func (t PricingTable) Lookup(model string) analyzer.Pricing {
	if p, ok := t.Models[model]; ok {
		return p
	}
	best := ""
	for id := range t.Models {
		if strings.HasPrefix(model, id) && len(id) > len(best) {
			best = id
		}
	}
	if best != "" {
		return t.Models[best]
	}
	return t.Default
}
