package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive search session",
	Long: `Start an interactive session over one in-memory store.

Commands:
  <question>      show the best matching document
  :ask <question> answer from the best matching document
  :load <glob>    load more documents
  :count          number of stored documents
  :quit           leave the session`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return runSession(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runSession reads commands from in until EOF or :quit. Errors from a single
// line are printed and the session continues.
func runSession(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == ":quit" || line == ":q" {
			return nil
		}
		handleLine(ctx, app, line, out)
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func handleLine(ctx context.Context, app *App, line string, out io.Writer) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], ":") {
		results, err := app.Search(ctx, line, 0)
		if err != nil {
			renderError(out, err)
			return
		}
		_ = renderResults(out, results, false)
		return
	}

	switch cmd, rest := fields[0], fields[1:]; cmd {
	case ":count":
		fmt.Fprintln(out, app.Count())

	case ":load":
		if len(rest) == 0 {
			fmt.Fprintln(out, "usage: :load <glob> [glob...]")
			return
		}
		report, err := app.Load(ctx, rest)
		if err != nil {
			renderError(out, err)
			return
		}
		fmt.Fprintln(out, report.Summary())

	case ":ask":
		answer, err := app.Ask(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
		if err != nil {
			renderError(out, err)
			return
		}
		renderAnswer(out, answer)

	default:
		fmt.Fprintf(out, "unknown command %s\n", cmd)
	}
}
