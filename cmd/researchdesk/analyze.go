package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/agent"
	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/display"
	"github.com/seenimoa/researchdesk/internal/report"
	"github.com/seenimoa/researchdesk/internal/tracker"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var errAllFailed = errors.New("every analysis failed")

type analyzeOptions struct {
	save        bool
	format      string
	compare     bool
	full        bool
	model       string
	concurrency int
	stageDelay  int
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze TICKER...",
		Short: "Run the full research pipeline on one or more tickers",
		Long: `Run the five-stage research pipeline (business, value, growth, risk, CIO)
on each ticker and print the executive summary.

Examples:
  researchdesk analyze AAPL
  researchdesk analyze AAPL MSFT GOOGL --compare --save --format html
  researchdesk analyze NVDA --model deepseek-chat --full`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.save, "save", false, "write a report file per ticker")
	f.StringVar(&opts.format, "format", "", "report format: json, txt or html (default from config)")
	f.BoolVar(&opts.compare, "compare", false, "print a ranked comparison table")
	f.BoolVar(&opts.full, "full", false, "print every stage report in full")
	f.StringVar(&opts.model, "model", "", "model to use (see `researchdesk models`)")
	f.String("log", "", "also write logs to this file")
	f.IntVar(&opts.concurrency, "concurrency", 1, "tickers analyzed at once")
	f.IntVar(&opts.stageDelay, "stage-delay", 0, "seconds to pause between stages")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, args []string, opts analyzeOptions) error {
	tickers := utils.NormalizeTickers(args)
	for _, t := range tickers {
		if !utils.ValidTicker(t) {
			return fmt.Errorf("%w: %q", datasource.ErrInvalidTicker, t)
		}
	}

	cfg, err := analyzeConfig(a.cfg, cmd, opts)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, err := agent.NewPipelineFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	var decisions *tracker.Tracker
	if cfg.Tracker.Enabled {
		if decisions, err = tracker.New(cfg.Tracker.Dir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.Tracker.Dir).Msg("decision tracking disabled")
			decisions = nil
		}
	}

	out := cmd.OutOrStdout()
	display.Header(out, "ANALYZING "+strings.Join(tickers, ", "))
	display.Info(out, fmt.Sprintf("Model: %s | Market: %s", pipeline.Model(), utils.MarketStatus()))

	start := time.Now()
	results := pipeline.AnalyzeMany(ctx, tickers)

	writer := report.NewWriter(cfg.Output.Dir)
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
			display.Summary(out, res)
			continue
		}
		if opts.full {
			display.Full(out, res)
		}
		display.Summary(out, res)
		// Saved before logging so the decision records the report path.
		if opts.save {
			if path, err := writer.Save(res, format); err != nil {
				display.Error(out, fmt.Sprintf("save %s report: %v", res.Ticker, err))
			} else {
				display.Success(out, "Report saved: "+path)
			}
		}
		if decisions != nil {
			if _, err := decisions.Log(tracker.FromResult(res)); err != nil {
				log.Warn().Err(err).Str("ticker", res.Ticker).Msg("failed to log decision")
			}
		}
	}

	if opts.compare && len(results) > 1 {
		display.Comparison(out, results)
	}
	display.Info(out, "Completed in "+report.FormatDuration(time.Since(start)))

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed == len(results) {
		return errAllFailed
	}
	return nil
}

// analyzeConfig applies the command-line overrides to a copy of base and
// validates the result. base is never modified.
func analyzeConfig(base *config.Config, cmd *cobra.Command, opts analyzeOptions) (*config.Config, error) {
	cfg := base
	if opts.model != "" {
		cfg = cfg.WithModel(opts.model)
	}
	flags := cmd.Flags()
	if flags.Changed("concurrency") || flags.Changed("stage-delay") {
		concurrency, delay := cfg.Pipeline.Concurrency, cfg.Pipeline.StageDelaySec
		if flags.Changed("concurrency") {
			concurrency = opts.concurrency
		}
		if flags.Changed("stage-delay") {
			delay = opts.stageDelay
		}
		cfg = cfg.WithPipeline(concurrency, delay)
	}
	if opts.format != "" {
		f, err := report.ParseFormat(opts.format)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithOutputFormat(string(f))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
