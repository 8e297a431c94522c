package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantmesh/finvec"
	"github.com/quantmesh/finvec/metadata"
)

var (
	queryText      string
	queryTopK      int
	queryNamespace string
	queryFilters   []string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a similarity query",
	Long: `Query embeds the given text and prints the closest records as JSON.
Filters are exact-match key=value pairs on record metadata; values are
matched as strings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryText == "" {
			return fmt.Errorf("--text is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		vectors, err := provider.Embed(ctx, []string{queryText})
		if err != nil {
			return err
		}

		filter := metadata.Filter{}
		for _, pair := range queryFilters {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid filter %q: want key=value", pair)
			}
			filter[key] = metadata.String(value)
		}

		namespace := cfg.Store.Namespace
		if queryNamespace != "" {
			namespace = queryNamespace
		}

		matches, err := store.Query(ctx, vectors[0], queryTopK, func(o *finvec.QueryOptions) {
			o.Namespace = namespace
			if len(filter) > 0 {
				o.Filter = filter
			}
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, m := range matches {
			if err := enc.Encode(map[string]any{
				"id":       m.ID,
				"score":    m.Score,
				"metadata": m.Metadata.ToMap(),
			}); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryText, "text", "", "query text (required)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 5, "number of results")
	queryCmd.Flags().StringVar(&queryNamespace, "namespace", "", "namespace to search")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "metadata filter key=value (repeatable)")
	rootCmd.AddCommand(queryCmd)
}
