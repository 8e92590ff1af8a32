// Package config 提供 DocMeta 的配置管理功能。
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量（DOCMETA_ 前缀）。
// 每个 Provider 的凭据可通过 DOCMETA_<ID>_API_KEY 单独注入。
package config
