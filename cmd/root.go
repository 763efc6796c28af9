package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/overschie/brugstatus/internal/bridge"
	"github.com/overschie/brugstatus/internal/config"
	"github.com/overschie/brugstatus/internal/portal"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "brugstatus",
	Short:         "Check whether a bridge is currently open",
	Long:          "Queries the Rotterdam open data portal for bridge opening records and infers the current open/closed status of a named bridge.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// portalConfig maps the loaded configuration onto portal search parameters.
func portalConfig(cfg *config.Config) portal.Config {
	return portal.Config{
		Endpoint: cfg.Portal.Endpoint,
		Dataset:  cfg.Portal.Dataset,
		Query:    cfg.Bridge.Name,
		Rows:     cfg.Portal.Rows,
		Sort:     cfg.Portal.Sort,
		Timeout:  time.Duration(cfg.Portal.TimeoutSecs) * time.Second,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var lookupErr *bridge.LookupError
		if errors.As(err, &lookupErr) {
			fmt.Fprintf(os.Stderr, "Kon de brugstatus niet bepalen: %s\n", lookupErr.Reason)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
