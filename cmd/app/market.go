package main

import (
	"fmt"

	"FXOptions/internal/di"
	"FXOptions/internal/handler/api"

	"github.com/spf13/cobra"
)

func newMarketCmd(rc *rootConfig) *cobra.Command {
	var (
		base, quote       string
		valuation, expiry string
	)

	cmd := &cobra.Command{
		Use:     "market",
		Short:   "Resolve a live market data snapshot for a pair",
		Example: "  fxoptions market --base XAG --quote EUR --valuation 2025-06-20 --expiry 2025-12-19",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			agg, cleanup, err := di.InitializeMarketData(cfg)
			if err != nil {
				return fmt.Errorf("market data initialization failed: %w", err)
			}
			defer cleanup()

			snap, err := agg.Resolve(cmd.Context(), base, quote, api.MarketTenor(valuation, expiry))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), api.NewMarketDataResponse(snap))
		},
	}

	f := cmd.Flags()
	f.StringVar(&base, "base", "XAG", "base instrument code")
	f.StringVar(&quote, "quote", "EUR", "quote currency code")
	f.StringVar(&valuation, "valuation", "", "valuation date YYYY-MM-DD")
	f.StringVar(&expiry, "expiry", "", "expiry date YYYY-MM-DD; with --valuation sets the tenor")
	return cmd
}
