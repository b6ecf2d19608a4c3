package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the stored listing catalog",
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with the built-in fixture listings",
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

		count, err := st.UpsertListings(ctx, catalog.FixtureListings())
		if err != nil {
			return eris.Wrap(err, "seed listings")
		}

		zap.L().Info("catalog seeded", zap.Int("listings", count))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}
