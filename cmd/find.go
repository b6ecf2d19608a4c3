package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fretsource/guitar-scout/internal/model"
)

var (
	findJSON    bool
	findExplain bool
)

var findCmd = &cobra.Command{
	Use:   "find \"query\" [\"query\"...]",
	Short: "Find guitars matching a free-text request",
	Long:  "Runs the full analysis pipeline for each query and prints ranked recommendations. Multiple queries run concurrently.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runs := make([]*model.QueryRun, len(args))
		g, gctx := errgroup.WithContext(ctx)
		for i, query := range args {
			i, query := i, query
			g.Go(func() error {
				runs[i] = env.Pipeline.Run(gctx, query)
				return nil
			})
		}
		// Run never returns an error; the group only propagates ctx cancel.
		_ = g.Wait()

		if findJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		for _, run := range runs {
			printRun(run)
		}
		return nil
	},
}

func printRun(run *model.QueryRun) {
	fmt.Printf("\nQuery: %s (status: %s)\n", run.Query, run.Status)
	if run.Result == nil {
		return
	}

	if run.Result.UserAnalysis != "" {
		fmt.Printf("%s\n\n", run.Result.UserAnalysis)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Guitar", "Price", "Condition", "Score", "Source", "Verified"})
	for _, rec := range run.Result.Recommendations {
		verified := ""
		if rec.Reconciled {
			verified = "yes"
		}
		t.AppendRow(table.Row{
			rec.Rank,
			rec.Title,
			fmt.Sprintf("$%.0f", rec.Price),
			rec.Condition,
			fmt.Sprintf("%.2f", rec.MatchScore),
			rec.Source,
			verified,
		})
	}
	t.Render()

	if run.Result.MarketInsights != "" {
		fmt.Printf("\nMarket insights: %s\n", run.Result.MarketInsights)
	}
	if run.Result.AlternativeSuggestions != "" {
		fmt.Printf("Alternatives: %s\n", run.Result.AlternativeSuggestions)
	}

	if findExplain && run.Trace != nil {
		printTrace(run.Trace)
	}
}

func printTrace(tr *model.ExplanationTrace) {
	fmt.Println("\nReasoning:")
	for _, step := range tr.ReasoningSteps {
		fmt.Printf("  [%s] %s\n", step.Timestamp.Format("15:04:05"), step.Step)
	}
	if len(tr.KnowledgeApplied) > 0 {
		fmt.Println("Knowledge applied:")
		for _, k := range tr.KnowledgeApplied {
			fmt.Printf("  - %s\n", k)
		}
	}
	if len(tr.ToolsUsed) > 0 {
		fmt.Println("Tools used:")
		for _, tu := range tr.ToolsUsed {
			fmt.Printf("  - %s(%s) -> %s\n", tu.Tool, tu.Input, tu.Output)
		}
	}
	if tr.SearchFilter != nil {
		f := tr.SearchFilter
		parts := []string{fmt.Sprintf("$%.0f-$%.0f", f.PriceMin, f.PriceMax)}
		if len(f.Brands) > 0 {
			parts = append(parts, "brands: "+strings.Join(f.Brands, ", "))
		}
		if len(f.SearchTerms) > 0 {
			parts = append(parts, "terms: "+strings.Join(f.SearchTerms, ", "))
		}
		fmt.Printf("Search filter: %s\n", strings.Join(parts, "; "))
	}
	fmt.Printf("Candidates found: %d\n", tr.CandidatesFound)
}

func init() {
	findCmd.Flags().BoolVar(&findJSON, "json", false, "print raw JSON instead of a table")
	findCmd.Flags().BoolVar(&findExplain, "explain", false, "print the full reasoning trace")
	rootCmd.AddCommand(findCmd)
}
