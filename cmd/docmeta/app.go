package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/factory"
	"github.com/BaSui01/docmeta/config"
	"github.com/BaSui01/docmeta/internal/metrics"
)

// errReported 命令已把错误以 JSON 写到标准输出
var errReported = errors.New("error reported")

// app 单次命令执行所需的依赖
type app struct {
	configPath string
	metrics    bool

	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	logger   *zap.Logger
	registry *analyzer.ProviderRegistry
	promReg  *prometheus.Registry
}

// setup 加载配置并构建注册表，每条命令只调用一次
func (a *app) setup() error {
	loader := config.NewLoader()
	if a.configPath != "" {
		loader = loader.WithConfigPath(a.configPath)
	}
	cfg, err := loader.
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = initLogger(cfg.Log)

	var recorder analyzer.Recorder
	if a.metrics || cfg.Metrics.Enabled {
		a.promReg = prometheus.NewRegistry()
		recorder = metrics.NewCollector(cfg.Metrics.Namespace, a.promReg, a.logger)
	}

	instrument := func(p analyzer.Provider) analyzer.Provider {
		return analyzer.Instrument(p, recorder, a.logger)
	}
	reg, err := factory.NewRegistryFromConfig(factory.RegistryConfig{
		Default:   cfg.DefaultProvider,
		Providers: cfg.ProviderConfigs(),
	}, a.logger, instrument)
	if err != nil {
		return err
	}
	a.registry = reg
	return nil
}

// teardown 刷新日志并按需输出指标
func (a *app) teardown() {
	if a.promReg != nil && a.metrics {
		if err := a.dumpMetrics(); err != nil {
			fmt.Fprintf(a.stderr, "failed to write metrics: %v\n", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) dumpMetrics() error {
	families, err := a.promReg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

// provider 按名称查找，名称为空时使用默认 Provider
func (a *app) provider(name string) (analyzer.Provider, error) {
	if name == "" {
		if p, err := a.registry.Default(); err == nil {
			return p, nil
		}
		// 没有显式默认值时使用第一个已配置凭据的 Provider
		configured := a.cfg.ConfiguredProviders()
		if len(configured) == 0 {
			return nil, fmt.Errorf("no provider configured: set DOCMETA_<PROVIDER>_API_KEY or choose one with --provider")
		}
		name = configured[0]
	}
	p, ok := a.registry.Get(factory.CanonicalName(name))
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, a.registry.List())
	}
	return p, nil
}

// readInput 读取输入文件，"-" 表示标准输入
func (a *app) readInput(path string, stdin io.Reader) ([]byte, error) {
	limit := a.cfg.Analysis.MaxInputBytes
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds the input limit of %d bytes", path, limit)
	}
	return data, nil
}

// writeJSON 把结果缩进输出
func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// reportError 把 ProviderError 以 JSON 输出，其他错误原样返回
func (a *app) reportError(err error) error {
	perr, ok := analyzer.AsProviderError(err)
	if !ok {
		return err
	}
	if werr := a.writeJSON(map[string]any{"error": perr}); werr != nil {
		return werr
	}
	return errReported
}
