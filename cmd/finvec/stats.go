package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		stats := store.Stats()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(map[string]any{
			"dimension":  stats.Dimension,
			"metric":     stats.Metric.String(),
			"vectors":    stats.VectorCount,
			"live":       stats.LiveCount,
			"tombstones": stats.TombstoneCount,
			"rebuilds":   stats.Rebuilds,
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
