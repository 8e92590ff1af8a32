/*
包 gemini 提供 Google Gemini 模型的元数据分析适配实现，基于
google.golang.org/genai 的 Models.GenerateContent。

请求通过 ResponseMIMEType application/json 约束输出；图像以内联字节段发送，
仅有 URL 的图像会被拒绝。用量信息取自 UsageMetadata。
*/
package gemini
