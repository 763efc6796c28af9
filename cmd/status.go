package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/overschie/brugstatus/internal/bridge"
	"github.com/overschie/brugstatus/internal/portal"
)

var (
	statusBridge  string
	statusDataset string
	statusRows    int
	statusURL     string
	statusJSON    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Look up the current bridge status once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Flags override config when set.
		if cmd.Flags().Changed("bridge") {
			cfg.Bridge.Name = statusBridge
		}
		if cmd.Flags().Changed("dataset") {
			cfg.Portal.Dataset = statusDataset
		}
		if cmd.Flags().Changed("rows") {
			cfg.Portal.Rows = statusRows
		}
		if cmd.Flags().Changed("url") {
			cfg.Portal.Endpoint = statusURL
		}

		client := portal.NewClient(portalConfig(cfg))
		checker := bridge.NewChecker(client)

		status, err := checker.Status(ctx)
		if err != nil {
			return err
		}

		zap.L().Debug("lookup complete",
			zap.String("bridge", cfg.Bridge.Name),
			zap.String("label", status.IsOpen.Label()),
		)

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(status)
		}

		_, err = os.Stdout.WriteString(status.Text(cfg.Bridge.Name) + "\n")
		return err
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusBridge, "bridge", "Hogebrug", "bridge name to query")
	statusCmd.Flags().StringVar(&statusDataset, "dataset", "brugopeningen", "dataset id on the open data portal")
	statusCmd.Flags().IntVar(&statusRows, "rows", 5, "number of records fetched to determine the status")
	statusCmd.Flags().StringVar(&statusURL, "url", "", "search endpoint of the open data portal (default from config)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the result as JSON instead of text")
	rootCmd.AddCommand(statusCmd)
}
