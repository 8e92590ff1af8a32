// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 是所有具体服务商适配器的公共基础层：共享配置、能力与参数
解析、响应归一化（容错 JSON 提取）、错误分类与文本清洗。各服务商子包
（deepseek、openai、qwen、anthropic、gemini）组合 [Base] 并复用这里的函数。

# 核心类型

  - ProviderConfig：APIKey、Model、MaxTokens、Temperature、BaseURL、超时
  - VendorSpec：服务商静态描述（身份、模型目录、视觉能力、价格表）
  - Base：组合进适配器的共享行为（前置检查、参数解析、计价兜底）
  - PricingTable：模型价格表，未知模型回落默认档位
  - ChatRequest / ChatResponse 等：OpenAI 兼容 API 的请求/响应结构体

# 核心函数

  - ClassifyStatus / ClassifyResponse：HTTP 状态到错误分类（401/429/500/503 统一文案）
  - TransportError：拿到状态码之前的网络失败
  - ReadErrorMessage：从错误体中提取 error.message
  - ExtractJSON / ParseMetadata：从带说明文字或代码块的回答中提取 JSON 对象
  - ContentText / DecodeUsage / NewResult：响应信封归一化
  - SanitizeText / BuildPrompt：输入清洗与指令拼接
*/
package providers
