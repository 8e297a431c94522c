package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quantmesh/finvec"
	"github.com/quantmesh/finvec/metadata"
)

// document is one line of the load input: JSON lines with optional id
// and namespace.
type document struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Namespace string         `json:"namespace"`
	Metadata  map[string]any `json:"metadata"`
}

var loadNamespace string

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Embed and upsert documents from a JSON-lines file",
	Long: `Load reads documents as JSON lines ({"id", "text", "namespace",
"metadata"}), embeds the text with the configured provider, and upserts
the vectors in batches. Documents without an id get a generated UUID.
Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		in := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
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

		namespace := cfg.Store.Namespace
		if loadNamespace != "" {
			namespace = loadNamespace
		}

		ctx := cmd.Context()
		dec := json.NewDecoder(in)
		total := 0
		batch := make([]document, 0, cfg.Store.BatchSize)

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}

			texts := make([]string, len(batch))
			for i, doc := range batch {
				texts[i] = doc.Text
			}
			vectors, err := provider.Embed(ctx, texts)
			if err != nil {
				return err
			}

			items := make([]finvec.Item, len(batch))
			for i, doc := range batch {
				id := doc.ID
				if id == "" {
					id = uuid.NewString()
				}
				md, err := metadata.FromMap(doc.Metadata)
				if err != nil {
					return fmt.Errorf("document %q: %w", id, err)
				}
				items[i] = finvec.Item{ID: id, Values: vectors[i], Metadata: md}
			}

			res, err := store.Upsert(ctx, items, namespace)
			if err != nil {
				return err
			}
			total += res.UpsertedCount
			batch = batch[:0]

			return nil
		}

		for {
			var doc document
			if err := dec.Decode(&doc); err == io.EOF {
				break
			} else if err != nil {
				return fmt.Errorf("parse input: %w", err)
			}

			batch = append(batch, doc)
			if len(batch) == cfg.Store.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		fmt.Printf("loaded %d documents\n", total)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadNamespace, "namespace", "", "namespace for loaded documents")
	rootCmd.AddCommand(loadCmd)
}
