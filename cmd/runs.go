package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fretsource/guitar-scout/internal/store"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored query runs",
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

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "list runs")
		}

		if runsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Query", "Status", "Recs", "Created"})
		for _, run := range runs {
			recs := 0
			if run.Result != nil {
				recs = len(run.Result.Recommendations)
			}
			t.AppendRow(table.Row{
				run.ID,
				run.Query,
				run.Status,
				recs,
				run.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		t.Render()
		return nil
	},
}

var runShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored query run",
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

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			return eris.Wrap(err, "get run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "print raw JSON instead of a table")
	runsCmd.AddCommand(runShowCmd)
	rootCmd.AddCommand(runsCmd)
}
