package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"FXOptions/pkg/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootConfig struct {
	configPath string
}

// load reads the YAML config; a missing default file falls back to defaults.
func (rc *rootConfig) load(cmd *cobra.Command) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(rc.configPath); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	cfg, err := config.LoadWithEnv(rc.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	rc := &rootConfig{}
	cmd := &cobra.Command{
		Use:   "fxoptions",
		Short: "Garman-Kohlhagen pricing for FX and precious metal options",
		Long: `fxoptions prices European vanilla options on FX pairs and precious metals
with the Garman-Kohlhagen model, inverts market premiums to implied
volatility and resolves live market inputs from public sources.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&rc.configPath, "config", "config/config.yaml", "config file path")

	cmd.AddCommand(
		newServeCmd(rc),
		newPriceCmd(),
		newMarketCmd(rc),
	)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
