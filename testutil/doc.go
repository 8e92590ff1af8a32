// Copyright 2026 DocMeta Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package testutil 提供 DocMeta 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 数据工具: MustJSON / MustParseJSON / WriteTempFile

# 子包

  - testutil/mocks: 记录请求的 httptest 服务（Server）、统计出站调用次数的
    CountingTransport，以及可编程的 MockProvider
  - testutil/fixtures: 各服务商的响应信封样例与测试图像

# 使用示例

	srv := mocks.NewServer(t, http.StatusOK, fixtures.ChatCompletion("deepseek-chat", `{"title":"Doc A"}`))
	p := deepseek.NewDeepSeekProvider(providers.ProviderConfig{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	res, err := p.AnalyzeText(testutil.TestContext(t), "body", "extract", analyzer.Options{})
*/
package testutil
