// =============================================================================
// DocMeta 命令行入口
// =============================================================================
// 使用方法:
//
//	docmeta analyze-text --file doc.txt            # 使用默认 Provider
//	docmeta test --config docmeta.yaml             # 检查凭据
//	docmeta version                                # 显示版本信息
// =============================================================================

package main

import (
	"errors"
	"fmt"
	"os"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		// 已输出 JSON 错误的命令不再重复打印
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
