package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/docmeta/analyzer"
	"github.com/BaSui01/docmeta/analyzer/factory"
	"github.com/BaSui01/docmeta/analyzer/tokenizer"
	"github.com/BaSui01/docmeta/internal/ctxkeys"
)

// maxConcurrentChecks test 命令同时进行的连通性检查数
const maxConcurrentChecks = 4

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "docmeta",
		Short: "Extract structured document metadata with LLM providers",
		Long: `DocMeta sends a document or image to a configured LLM provider and
returns the structured metadata the model extracted, as JSON.

Credentials are read from the config file or from DOCMETA_<PROVIDER>_API_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print Prometheus metrics to stderr after the command")

	root.AddCommand(analyzeTextCmd(a))
	root.AddCommand(analyzeImageCmd(a))
	root.AddCommand(testCmd(a))
	root.AddCommand(modelsCmd(a))
	root.AddCommand(pricingCmd(a))
	root.AddCommand(versionCmd(a))

	return root
}

// withApp 包装需要配置与注册表的命令
func withApp(a *app, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(); err != nil {
			return err
		}
		defer a.teardown()
		// 同一次命令内的所有调用共享一个关联 ID
		cmd.SetContext(ctxkeys.WithRequestID(cmd.Context(), uuid.NewString()))
		return run(cmd, args)
	}
}

// analysisFlags analyze-* 命令共享的参数
type analysisFlags struct {
	provider    string
	prompt      string
	model       string
	maxTokens   int
	temperature float64
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "provider id (default: configured default)")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "analysis instruction (default: analysis.prompt)")
	cmd.Flags().StringVar(&f.model, "model", "", "model override")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "max output tokens override")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "temperature override")
}

func (f *analysisFlags) options(cmd *cobra.Command) analyzer.Options {
	opts := analyzer.Options{Model: f.model, MaxTokens: f.maxTokens}
	if cmd.Flags().Changed("temperature") {
		t := f.temperature
		opts.Temperature = &t
	}
	return opts
}

func (f *analysisFlags) promptOr(fallback string) string {
	if f.prompt != "" {
		return f.prompt
	}
	return fallback
}

func analyzeTextCmd(a *app) *cobra.Command {
	var flags analysisFlags
	var file string

	cmd := &cobra.Command{
		Use:   "analyze-text",
		Short: "Extract metadata from a text document",
		Args:  cobra.NoArgs,
		RunE: withApp(a, func(cmd *cobra.Command, _ []string) error {
			p, err := a.provider(flags.provider)
			if err != nil {
				return err
			}
			data, err := a.readInput(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			res, err := p.AnalyzeText(cmd.Context(), string(data), flags.promptOr(a.cfg.Analysis.Prompt), flags.options(cmd))
			if err != nil {
				return a.reportError(err)
			}
			return a.writeJSON(res)
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "-", "text file to analyze (- for stdin)")
	return cmd
}

func analyzeImageCmd(a *app) *cobra.Command {
	var flags analysisFlags
	var files []string
	var urls []string

	cmd := &cobra.Command{
		Use:   "analyze-image",
		Short: "Extract metadata from one or more images",
		Args:  cobra.NoArgs,
		RunE: withApp(a, func(cmd *cobra.Command, _ []string) error {
			if len(files)+len(urls) == 0 {
				return fmt.Errorf("at least one --file or --url is required")
			}
			p, err := a.provider(flags.provider)
			if err != nil {
				return err
			}

			images := make([]analyzer.Image, 0, len(files)+len(urls))
			for _, f := range files {
				data, err := a.readInput(f, cmd.InOrStdin())
				if err != nil {
					return err
				}
				images = append(images, analyzer.Image{Data: data})
			}
			for _, u := range urls {
				images = append(images, analyzer.Image{URL: u})
			}

			prompt := flags.promptOr(a.cfg.Analysis.Prompt)
			var res *analyzer.AnalysisResult
			if len(images) == 1 {
				res, err = p.AnalyzeImage(cmd.Context(), images[0], prompt, flags.options(cmd))
			} else {
				res, err = p.AnalyzeImages(cmd.Context(), images, prompt, flags.options(cmd))
			}
			if err != nil {
				return a.reportError(err)
			}
			return a.writeJSON(res)
		}),
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "image file to analyze (repeatable)")
	cmd.Flags().StringArrayVar(&urls, "url", nil, "image URL to analyze (repeatable)")
	return cmd
}

// connectionReport test 命令的单项输出
type connectionReport struct {
	Provider string `json:"provider"`
	analyzer.ConnectionResult
}

func testCmd(a *app) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check credentials and connectivity of providers",
		Long: `Sends a minimal request to each provider. Without --provider every provider
with a configured API key is checked concurrently.`,
		Args: cobra.NoArgs,
		RunE: withApp(a, func(cmd *cobra.Command, _ []string) error {
			if len(names) == 0 {
				names = a.cfg.ConfiguredProviders()
			}
			targets := make([]analyzer.Provider, 0, len(names))
			for _, n := range names {
				p, err := a.provider(n)
				if err != nil {
					return err
				}
				targets = append(targets, p)
			}

			reports := checkConnections(cmd.Context(), targets)
			if err := a.writeJSON(reports); err != nil {
				return err
			}
			for _, r := range reports {
				if !r.Success {
					return errReported
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringSliceVarP(&names, "provider", "p", nil, "provider ids to check (default: all configured)")
	return cmd
}

// checkConnections 并发检查，结果顺序与输入一致
func checkConnections(ctx context.Context, targets []analyzer.Provider) []connectionReport {
	reports := make([]connectionReport, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, p := range targets {
		g.Go(func() error {
			reports[i] = connectionReport{Provider: p.ID(), ConnectionResult: p.TestConnection(gctx)}
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// modelCatalog models 命令的单项输出
type modelCatalog struct {
	Provider       string               `json:"provider"`
	Name           string               `json:"name"`
	DefaultModel   string               `json:"default_model"`
	SupportsVision bool                 `json:"supports_vision"`
	Configured     bool                 `json:"configured"`
	Models         []analyzer.ModelInfo `json:"models"`
}

func modelsCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog of each provider",
		Args:  cobra.NoArgs,
		RunE: withApp(a, func(_ *cobra.Command, _ []string) error {
			ids := a.registry.List()
			if name != "" {
				p, err := a.provider(name)
				if err != nil {
					return err
				}
				ids = []string{p.ID()}
			}

			configured := make(map[string]bool)
			for _, id := range a.cfg.ConfiguredProviders() {
				configured[factory.CanonicalName(id)] = true
			}

			out := make([]modelCatalog, 0, len(ids))
			for _, id := range ids {
				p, _ := a.registry.Get(id)
				out = append(out, modelCatalog{
					Provider:       p.ID(),
					Name:           p.Name(),
					DefaultModel:   p.DefaultModel(),
					SupportsVision: p.SupportsVision(),
					Configured:     configured[p.ID()],
					Models:         p.AvailableModels(),
				})
			}
			return a.writeJSON(out)
		}),
	}
	cmd.Flags().StringVarP(&name, "provider", "p", "", "only list this provider")
	return cmd
}

// priceQuote pricing 命令输出
type priceQuote struct {
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
	Pricing  analyzer.Pricing `json:"pricing"`
	Estimate *costEstimate    `json:"estimate,omitempty"`
}

type costEstimate struct {
	Tokenizer string         `json:"tokenizer"`
	Usage     map[string]any `json:"usage"`
	CostUSD   float64        `json:"cost_usd"`
}

func pricingCmd(a *app) *cobra.Command {
	var name, model, file string
	var maxOutput int

	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show model pricing and optionally estimate the cost of a document",
		Args:  cobra.NoArgs,
		RunE: withApp(a, func(cmd *cobra.Command, _ []string) error {
			p, err := a.provider(name)
			if err != nil {
				return err
			}
			if model == "" {
				model = p.DefaultModel()
			}
			quote := priceQuote{Provider: p.ID(), Model: model, Pricing: p.Pricing(model)}

			if file != "" {
				data, err := a.readInput(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				usage := tokenizer.EstimateUsage(model, string(data), maxOutput)
				quote.Estimate = &costEstimate{
					Tokenizer: tokenizer.ForModel(model).Name(),
					Usage:     usage,
					CostUSD:   analyzer.EstimateCost(quote.Pricing, usage),
				}
			}
			return a.writeJSON(quote)
		}),
	}
	cmd.Flags().StringVarP(&name, "provider", "p", "", "provider id (default: configured default)")
	cmd.Flags().StringVar(&model, "model", "", "model id (default: provider default model)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "estimate the cost of analyzing this file")
	cmd.Flags().IntVar(&maxOutput, "max-output", 1000, "assumed output tokens for the estimate")
	return cmd
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "DocMeta %s\n", Version)
			fmt.Fprintf(a.stdout, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(a.stdout, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Providers:  %v\n", sortedProviders())
		},
	}
}

func sortedProviders() []string {
	ids := factory.SupportedProviders()
	sort.Strings(ids)
	return ids
}

