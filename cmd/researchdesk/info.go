package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/display"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "researchdesk %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			display.Models(cmd.OutOrStdout(), config.Models(), a.cfg.LLM.Model)
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status and configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			cfg := a.cfg

			display.Header(out, "researchdesk: System Status")
			fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
			fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
			fmt.Fprintf(out, "  Time (ET):     %s\n", utils.FormatDateTime(utils.NowET()))

			display.Section(out, "Configuration")
			fmt.Fprintf(out, "  Model:         %s\n", cfg.LLM.Model)
			fmt.Fprintf(out, "  Stage Delay:   %s\n", cfg.Pipeline.StageDelay())
			fmt.Fprintf(out, "  Concurrency:   %d\n", cfg.Pipeline.Concurrency)
			fmt.Fprintf(out, "  Output:        %s (%s)\n", cfg.Output.Dir, cfg.Output.Format)
			fmt.Fprintf(out, "  Tracker:       %s (enabled: %t)\n", cfg.Tracker.Dir, cfg.Tracker.Enabled)

			display.Section(out, "API Keys")
			display.Keys(out, config.CheckAPIKeys(cfg))
			if err := cfg.Validate(); err != nil {
				display.Warning(out, err.Error())
			} else {
				display.Success(out, "Ready to analyze")
			}
		},
	}
}
