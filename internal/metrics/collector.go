// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// OutcomeOK 成功调用使用的 outcome 标签值，失败时使用错误分类。
const OutcomeOK = "ok"

// Collector 指标收集器
type Collector struct {
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	tokensUsed       *prometheus.CounterVec
	cost             *prometheus.CounterVec
	connectionChecks *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为空时注册到 prometheus.DefaultRegisterer。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.analysisTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Total number of metadata analysis requests",
		},
		[]string{"provider", "model", "operation", "outcome"},
	)

	c.analysisDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_request_duration_seconds",
			Help:      "Metadata analysis request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "model", "operation"},
	)

	c.tokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_tokens_total",
			Help:      "Total tokens reported by providers",
		},
		[]string{"provider", "model", "direction"},
	)

	c.cost = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cost_usd_total",
			Help:      "Estimated analysis cost in USD",
		},
		[]string{"provider", "model"},
	)

	c.connectionChecks = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_checks_total",
			Help:      "Total number of provider connection checks",
		},
		[]string{"provider", "success"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordAnalysis 记录一次分析调用
func (c *Collector) RecordAnalysis(provider, model, operation, outcome string, duration time.Duration) {
	c.analysisTotal.WithLabelValues(provider, model, operation, outcome).Inc()
	c.analysisDuration.WithLabelValues(provider, model, operation).Observe(duration.Seconds())
}

// RecordTokens 记录 token 用量与估算成本
func (c *Collector) RecordTokens(provider, model string, inputTokens, outputTokens int, cost float64) {
	if inputTokens > 0 {
		c.tokensUsed.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		c.tokensUsed.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
	if cost > 0 {
		c.cost.WithLabelValues(provider, model).Add(cost)
	}
}

// RecordConnectionCheck 记录一次连通性检查
func (c *Collector) RecordConnectionCheck(provider string, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	c.connectionChecks.WithLabelValues(provider, label).Inc()
}
