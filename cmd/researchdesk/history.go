package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/display"
	"github.com/seenimoa/researchdesk/internal/tracker"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the decision log",
		Long: `Query the decision log written by analyze.

Examples:
  researchdesk history
  researchdesk history ticker AAPL
  researchdesk history recommendation BUY
  researchdesk history recent 7
  researchdesk history export decisions.json`,
		Args: cobra.NoArgs,
		RunE: a.historySummary,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "Print aggregate statistics",
			Args:  cobra.NoArgs,
			RunE:  a.historySummary,
		},
		a.historyQuery("ticker TICKER", "List decisions for a ticker", (*tracker.Tracker).ByTicker),
		a.historyQuery("recommendation REC", "List decisions with a recommendation", (*tracker.Tracker).ByRecommendation),
		a.historyQuery("model MODEL", "List decisions made with a model", (*tracker.Tracker).ByModel),
		&cobra.Command{
			Use:   "recent [DAYS]",
			Short: "List decisions from the last DAYS days (default 30)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				days := 30
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("invalid day count %q", args[0])
					}
					days = n
				}
				t, err := a.tracker()
				if err != nil {
					return err
				}
				entries, err := t.Recent(days)
				if err != nil {
					return err
				}
				display.Decisions(cmd.OutOrStdout(), entries)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export [PATH]",
			Short: "Export the decision log as JSON",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := a.tracker()
				if err != nil {
					return err
				}
				var path string
				if len(args) == 1 {
					path = args[0]
				}
				written, err := t.Export(path)
				if err != nil {
					return err
				}
				display.Success(cmd.OutOrStdout(), "Exported to "+written)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) tracker() (*tracker.Tracker, error) {
	return tracker.New(a.cfg.Tracker.Dir)
}

func (a *app) historySummary(cmd *cobra.Command, _ []string) error {
	t, err := a.tracker()
	if err != nil {
		return err
	}
	summary, err := t.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

// historyQuery builds a subcommand that filters the log by its one argument.
func (a *app) historyQuery(use, short string, query func(*tracker.Tracker, string) ([]tracker.Entry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			entries, err := query(t, args[0])
			if err != nil {
				return err
			}
			display.Decisions(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}
