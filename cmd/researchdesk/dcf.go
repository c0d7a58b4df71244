package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/display"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

func newDCFCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dcf TICKER",
		Short: "Run the deterministic DCF valuation (no language model)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := utils.NormalizeTicker(args[0])
			if !utils.ValidTicker(ticker) {
				return fmt.Errorf("%w: %q", datasource.ErrInvalidTicker, ticker)
			}

			data, err := datasource.NewCollectorFromConfig(a.cfg.Data).Collect(cmd.Context(), ticker)
			if err != nil {
				return fmt.Errorf("collect %s: %w", ticker, err)
			}
			v := fundamental.Value(data)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v.Snapshot())
			}
			display.Valuation(out, data, v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the valuation snapshot as JSON")
	return cmd
}
