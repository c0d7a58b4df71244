package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/logging"
)

// app carries state shared by every command once the root has loaded the
// configuration.
type app struct {
	cfg      *config.Config
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "researchdesk",
		Short: "researchdesk: multi-stage AI investment research",
		Long: `researchdesk collects market data and news for a ticker, runs it through
business, value, growth and risk analysts backed by a hosted language model,
and has a CIO stage synthesize a final investment decision.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newDCFCmd(a),
		newHistoryCmd(a),
		newModelsCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and installs the logger. A command-level
// --log flag adds a log file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		a.cfg, err = config.LoadFromFile(configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		a.cfg.Logging.Level = level
	}
	if f := cmd.Flags().Lookup("log"); f != nil && f.Changed {
		a.cfg.Logging.File = f.Value.String()
	}

	a.closeLog, err = logging.Setup(a.cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}
