// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 claude 提供 Anthropic Claude 系列模型的元数据分析适配实现。
请求通过 anthropic-sdk-go 发送到 Messages API（/v1/messages），
SDK 自带的重试被关闭，每次操作只发起一次调用。

# 协议差异

  - 认证使用 x-api-key 请求头（由 SDK 设置）
  - system 提示单独传递到 system 字段
  - 图像以 base64 image 内容块发送；仅有 URL 的图像会被拒绝
  - 没有 JSON 模式参数，依赖 system 提示约束输出
  - 529 overloaded 归类为 service_unavailable
*/
package claude
