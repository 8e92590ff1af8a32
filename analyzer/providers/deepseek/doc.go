// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 deepseek 提供 DeepSeek 模型的元数据分析适配实现。DeepSeek 使用
OpenAI 兼容的 API 格式，因此本包通过嵌入 openaicompat.Provider 复用
HTTP 处理、信封构造与回答归一化逻辑，仅定制差异部分。

# 定制行为

  - 默认 BaseURL: https://api.deepseek.com
  - Endpoint: /chat/completions
  - 默认模型: deepseek-chat
  - 请求携带 response_format json_object；deepseek-reasoner 不支持该参数，
    RequestHook 会移除它

# 不支持能力

  图像分析：AnalyzeImage / AnalyzeImages 直接返回 vision_unsupported，不发起请求。
*/
package deepseek
