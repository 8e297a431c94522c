package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteNamespace string

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete records by ID",
	Long: `Delete tombstones the records with the given IDs in the target
namespace. Unknown IDs are ignored. The index compacts automatically
once enough of it is tombstoned.`,
	Args: cobra.MinimumNArgs(1),
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

		namespace := cfg.Store.Namespace
		if deleteNamespace != "" {
			namespace = deleteNamespace
		}

		res, err := store.Delete(cmd.Context(), args, namespace)
		if err != nil {
			return err
		}

		fmt.Printf("deleted %d records\n", res.DeletedCount)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteNamespace, "namespace", "", "namespace to delete from")
	rootCmd.AddCommand(deleteCmd)
}
