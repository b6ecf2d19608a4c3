package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/fetcher"
)

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import file.{xlsx,csv}",
	Short: "Import guitar listings from an XLSX or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		listings, err := fetcher.ReadListings(args[0], fetcher.Options{SheetName: importSheet})
		if err != nil {
			return eris.Wrap(err, "read listings")
		}

		count, err := st.UpsertListings(ctx, listings)
		if err != nil {
			return eris.Wrap(err, "upsert listings")
		}

		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("parsed", len(listings)),
			zap.Int("imported", count),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	rootCmd.AddCommand(importCmd)
}
