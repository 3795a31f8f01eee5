package main

import (
	"fmt"
	"time"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/handler/api"
	"FXOptions/internal/usecase"
	"FXOptions/pkg/logger"
	"FXOptions/pkg/util"

	"github.com/spf13/cobra"
)

func newPriceCmd() *cobra.Command {
	var (
		in      api.OptionInput
		premium float64
		implied bool
	)

	cmd := &cobra.Command{
		Use:     "price",
		Short:   "Price one option, or invert a premium with --implied",
		Example: "  fxoptions price --spot 1.08 --strike 1.10 --vol 12 --rd 3 --rf 1 --notional 1000000 --type put --expiry 2025-07-02",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Valuation == "" {
				in.Valuation = util.FormatDate(time.Now())
			}
			params, days, err := in.Parameters()
			if err != nil {
				return err
			}
			svc := usecase.NewPricingService(logger.Nop())

			if implied {
				if !cmd.Flags().Changed("premium") {
					return fmt.Errorf("--implied requires --premium")
				}
				res, err := svc.ComputeImpliedVol(params, premium)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), api.NewImpliedVolResponse(res))
			}

			var market *float64
			if cmd.Flags().Changed("premium") {
				market = &premium
			}
			res, err := svc.ComputePricing(params, market)
			if err != nil {
				return err
			}
			res.DaysToExpiry = days
			return writeJSON(cmd.OutOrStdout(), api.NewPricingResponse(res))
		},
	}

	f := cmd.Flags()
	f.Float64Var(&in.Spot, "spot", 0, "spot rate, quote currency per unit of base")
	f.Float64Var(&in.Strike, "strike", 0, "strike")
	f.Float64Var(&in.VolPct, "vol", 0, "volatility in percent")
	f.Float64Var(&in.RatePctDomestic, "rd", 0, "domestic (quote) rate in percent")
	f.Float64Var(&in.RatePctForeign, "rf", 0, "foreign (base) rate in percent")
	f.Float64Var(&in.Notional, "notional", 1, "notional in base units")
	f.StringVar(&in.OptionType, "type", "call", "call or put")
	f.StringVar(&in.Valuation, "valuation", "", "valuation date YYYY-MM-DD (default today)")
	f.StringVar(&in.Expiry, "expiry", "", "expiry date YYYY-MM-DD")
	f.StringVar(&in.DayCount, "day-count", string(models.ACT365), "ACT/365 or ACT/360")
	f.Float64Var(&premium, "premium", 0, "market premium for the whole notional")
	f.BoolVar(&implied, "implied", false, "solve for implied volatility from --premium")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
	_ = cmd.MarkFlagRequired("expiry")
	return cmd
}
