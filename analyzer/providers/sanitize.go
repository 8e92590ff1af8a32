package providers

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SystemPrompt 要求模型只输出一个 JSON 对象。
const SystemPrompt = "You are a metadata extraction assistant. " +
	"Always respond with a single valid JSON object and nothing else: " +
	"no prose, no explanations and no markdown code fences."

// ContentSeparator 分隔指令与文档内容。
const ContentSeparator = "\n\n---\n\n"

// SanitizeText 将输入整理为合法的 UTF-8：非法字节替换为 U+FFFD，去掉除
// 换行/制表符以外的控制字符，并做 NFC 规范化。编码噪声不会导致请求失败。
func SanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(s)
}

// BuildPrompt 拼接指令与文档内容。
func BuildPrompt(prompt, document string) string {
	prompt = strings.TrimSpace(SanitizeText(prompt))
	document = strings.TrimSpace(SanitizeText(document))
	switch {
	case document == "":
		return prompt
	case prompt == "":
		return document
	}
	return prompt + ContentSeparator + document
}
