// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
docmeta 是文档元数据分析的命令行入口。

# 命令

	docmeta analyze-text --provider deepseek --file report.txt
	docmeta analyze-image --provider openai --file scan1.png --file scan2.png
	docmeta test                   # 并发检查所有已配置的 Provider
	docmeta test --provider qwen
	docmeta models
	docmeta pricing --provider openai --model gpt-4o --file report.txt
	docmeta version

全局参数 --config 指定 YAML 配置文件，--metrics 在命令结束后输出 Prometheus 指标。
所有结果以 JSON 写到标准输出，日志写到 log.output_paths（默认 stderr）。
*/
package main
