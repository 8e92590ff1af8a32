// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 analyzer 定义文档/图像元数据分析的统一 Provider 抽象。

# 概述

不同模型服务商在请求格式、鉴权、错误语义与能力（视觉、计价、模型目录）上
各不相同。本包对上层暴露一致的调用方式：传入文本或图像与指令，返回解析后的
结构化元数据 [AnalysisResult]，或一个类型化的 [ProviderError]。

# 核心接口

  - [Provider]：服务商适配接口，提供 ID / Name / AvailableModels /
    DefaultModel / SupportsVision / Pricing / AnalyzeText / AnalyzeImage /
    AnalyzeImages / TestConnection

# 核心类型

  - [Options]：单次调用的可调参数（模型、max_tokens、temperature）
  - [Image]：图像输入，内联字节或远程 URL
  - [AnalysisResult]：元数据、用量、实际模型与 Provider 标识
  - [ProviderError] / [ErrorKind]：统一错误分类
  - [ConnectionResult]：连通性检查结果
  - [ProviderRegistry]：线程安全的 Provider 注册表

# 调用约定

每个 Analyze 与 TestConnection 调用最多发起一次出站请求，不做重试与扇出。
失败时返回的 error 始终是 *ProviderError；TestConnection 从不返回错误。
*/
package analyzer
