package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/docmeta/internal/ctxkeys"
)

const instrumentationName = "github.com/BaSui01/docmeta/analyzer"

// 操作名，用于日志、span 与指标标签
const (
	OpAnalyzeText    = "analyze_text"
	OpAnalyzeImage   = "analyze_image"
	OpAnalyzeImages  = "analyze_images"
	OpTestConnection = "test_connection"
)

// Recorder 记录调用指标（internal/metrics.Collector 实现了该接口）。
type Recorder interface {
	RecordAnalysis(provider, model, operation, outcome string, duration time.Duration)
	RecordTokens(provider, model string, inputTokens, outputTokens int, cost float64)
	RecordConnectionCheck(provider string, success bool)
}

// InstrumentedProvider 为任意 Provider 增加日志、追踪与指标，结果与错误原样返回。
type InstrumentedProvider struct {
	Provider

	recorder Recorder
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Instrument wraps p. A nil recorder disables metrics; a nil logger disables logging.
func Instrument(p Provider, recorder Recorder, logger *zap.Logger) *InstrumentedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedProvider{
		Provider: p,
		recorder: recorder,
		logger:   logger.With(zap.String("provider", p.ID())),
		tracer:   otel.Tracer(instrumentationName),
	}
}

// Unwrap returns the decorated provider.
func (ip *InstrumentedProvider) Unwrap() Provider {
	return ip.Provider
}

// AnalyzeText implements Provider.
func (ip *InstrumentedProvider) AnalyzeText(ctx context.Context, text, prompt string, opts Options) (*AnalysisResult, error) {
	return ip.observe(ctx, OpAnalyzeText, opts, 0, func(ctx context.Context) (*AnalysisResult, error) {
		return ip.Provider.AnalyzeText(ctx, text, prompt, opts)
	})
}

// AnalyzeImage implements Provider.
func (ip *InstrumentedProvider) AnalyzeImage(ctx context.Context, image Image, prompt string, opts Options) (*AnalysisResult, error) {
	return ip.observe(ctx, OpAnalyzeImage, opts, 1, func(ctx context.Context) (*AnalysisResult, error) {
		return ip.Provider.AnalyzeImage(ctx, image, prompt, opts)
	})
}

// AnalyzeImages implements Provider.
func (ip *InstrumentedProvider) AnalyzeImages(ctx context.Context, images []Image, prompt string, opts Options) (*AnalysisResult, error) {
	return ip.observe(ctx, OpAnalyzeImages, opts, len(images), func(ctx context.Context) (*AnalysisResult, error) {
		return ip.Provider.AnalyzeImages(ctx, images, prompt, opts)
	})
}

// TestConnection implements Provider.
func (ip *InstrumentedProvider) TestConnection(ctx context.Context) ConnectionResult {
	ctx, requestID := withRequestID(ctx)
	ctx, span := ip.tracer.Start(ctx, "docmeta."+OpTestConnection, trace.WithAttributes(
		attribute.String("docmeta.provider", ip.ID()),
		attribute.String("docmeta.request_id", requestID)))
	defer span.End()

	start := time.Now()
	res := ip.Provider.TestConnection(ctx)
	duration := time.Since(start)

	span.SetAttributes(attribute.Bool("docmeta.success", res.Success))
	if !res.Success {
		span.SetStatus(codes.Error, res.Message)
	}
	if ip.recorder != nil {
		ip.recorder.RecordConnectionCheck(ip.ID(), res.Success)
	}
	ip.logger.Info("connection check",
		zap.String("request_id", requestID),
		zap.Bool("success", res.Success),
		zap.Duration("duration", duration))
	return res
}

func (ip *InstrumentedProvider) observe(ctx context.Context, op string, opts Options, images int,
	call func(context.Context) (*AnalysisResult, error)) (*AnalysisResult, error) {
	ctx, requestID := withRequestID(ctx)
	model := opts.Model
	if model == "" {
		model = ip.DefaultModel()
	}

	ctx, span := ip.tracer.Start(ctx, "docmeta."+op, trace.WithAttributes(
		attribute.String("docmeta.provider", ip.ID()),
		attribute.String("docmeta.model", model),
		attribute.String("docmeta.request_id", requestID),
		attribute.Int("docmeta.images", images)))
	defer span.End()

	start := time.Now()
	res, err := call(ctx)
	duration := time.Since(start)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("operation", op),
		zap.Duration("duration", duration),
	}

	if err != nil {
		kind := KindOf(err)
		outcome := string(kind)
		if outcome == "" {
			outcome = string(ErrUnknownAPIError)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		span.SetAttributes(attribute.String("docmeta.error_kind", outcome))
		if ip.recorder != nil {
			ip.recorder.RecordAnalysis(ip.ID(), model, op, outcome, duration)
		}
		ip.logger.Warn("analysis failed", append(fields,
			zap.String("model", model),
			zap.String("kind", outcome),
			zap.Error(err))...)
		return res, err
	}

	model = res.Model
	in, out := UsageTokens(res.Usage)
	cost := EstimateCost(ip.Pricing(model), res.Usage)
	span.SetAttributes(
		attribute.String("docmeta.model", model),
		attribute.Int("docmeta.tokens.input", in),
		attribute.Int("docmeta.tokens.output", out),
		attribute.Float64("docmeta.cost_usd", cost),
		attribute.Int("docmeta.fields", len(res.Metadata)))
	if ip.recorder != nil {
		ip.recorder.RecordAnalysis(ip.ID(), model, op, "ok", duration)
		ip.recorder.RecordTokens(ip.ID(), model, in, out, cost)
	}
	ip.logger.Info("analysis completed", append(fields,
		zap.String("model", model),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", out),
		zap.Float64("cost_usd", cost))...)
	return res, nil
}

// withRequestID 沿用调用方放入 context 的关联 ID，没有时生成一个
func withRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := ctxkeys.RequestID(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return ctxkeys.WithRequestID(ctx, id), id
}
