// 版权所有 2026 DocMeta Authors. 版权所有。
// 此源代码的使用由项目许可规范。

/*
包 metrics 提供基于 Prometheus 的分析调用指标采集。

# 概述

Collector 统一注册并记录元数据分析相关的 Prometheus 指标，按 namespace
隔离，注册到调用方给定的 Registerer（为空时使用默认 Registry）。

# 主要能力

  - 分析请求：总数（按 provider/model/operation/outcome）、耗时
  - Token 用量：按 provider/model/direction 累计
  - 估算成本：按 provider/model 累计（USD）
  - 连通性检查：按 provider/success 计数
*/
package metrics
