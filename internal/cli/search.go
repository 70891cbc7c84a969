package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchText string
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find the best matching document",
	Long: `Load documents and print the one most similar to the question.

Examples:
  semsearch search -q "alpha topic" --docs 'data/*.json'
  semsearch search -q "release notes" -k 3 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "question to search for (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	results, err := app.Search(ctx, searchText, searchTopK)
	if err != nil {
		if msg := userMessage(err); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}
		return err
	}
	return renderResults(cmd.OutOrStdout(), results, searchJSON)
}
