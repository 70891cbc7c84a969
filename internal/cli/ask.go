package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askText string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question from the best matching document",
	Long: `Load documents, retrieve the best match for the question and ask the
configured completion model to answer using only that document.

Example:
  semsearch ask -q "what is the alpha topic?" --docs 'data/*.json'`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question to answer (required)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	answer, err := app.Ask(ctx, askText)
	if err != nil {
		if msg := userMessage(err); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}
		return err
	}
	renderAnswer(cmd.OutOrStdout(), answer)
	return nil
}
