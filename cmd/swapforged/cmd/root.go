// Package cmd wires the swapforged daemon: an in-process swap engine with
// its HTTP query surface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cosmossdk.io/log"
	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swapforge/swapforge/api"
	"github.com/swapforge/swapforge/pkg/ledger"
	"github.com/swapforge/swapforge/x/amm/keeper"
)

// NewRootCmd creates the root command for swapforged.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "swapforged",
		Short: "Constant-product swap engine daemon",
		Long: `swapforged runs the SwapForge constant-product swap engine and serves
pool state, quotes and route discovery over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./swapforged.yaml)")
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the engine and its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := log.NewLogger(os.Stderr)
			led := ledger.New()
			k := keeper.NewKeeper(led, logger, clock.New(), v.GetString("fee_admin"))
			if recipient := v.GetString("fee_recipient"); recipient != "" {
				if err := k.SetFeeRecipient(cmd.Context(), v.GetString("fee_admin"), recipient); err != nil {
					return err
				}
			}

			cfg := api.DefaultConfig()
			cfg.Host = v.GetString("api.host")
			cfg.Port = v.GetString("api.port")
			if origins := v.GetStringSlice("api.cors_origins"); len(origins) > 0 {
				cfg.CORSOrigins = origins
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(k, logger, cfg)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "API listen host")
	cmd.Flags().String("port", "8080", "API listen port")
	cmd.Flags().String("fee-admin", "", "address allowed to change fee configuration")
	cmd.Flags().String("fee-recipient", "", "address accruing protocol fee shares (empty disables)")
	return cmd
}

// loadConfig merges, lowest precedence first: config file, SWAPFORGE_*
// environment variables, command-line flags.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", "8080")

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("swapforged")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("SWAPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flagName, key := range map[string]string{
		"host":          "api.host",
		"port":          "api.port",
		"fee-admin":     "fee_admin",
		"fee-recipient": "fee_recipient",
	} {
		if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}
