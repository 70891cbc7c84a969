package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/usecase"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// userMessage maps retrieval errors to the messages shown to users.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Please enter a question."
	case errors.Is(err, domain.ErrNoResults):
		return "No documents found."
	default:
		return ""
	}
}

func renderResults(w io.Writer, results []domain.Result, asJSON bool) error {
	if asJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if len(results) == 1 {
		fmt.Fprintln(w, usecase.FormatResult(&results[0]))
		return nil
	}

	for i, r := range results {
		header := headerStyle.Render(fmt.Sprintf("[%d] %s", i+1, r.Filename))
		score := scoreStyle.Render(fmt.Sprintf("score %.4f", r.Score))
		fmt.Fprintf(w, "%s  %s\n", header, score)
		fmt.Fprintln(w, resultBoxStyle.Render(strings.TrimSpace(r.Text)))
	}
	return nil
}

// renderAnswer prints the completion text exactly as returned.
func renderAnswer(w io.Writer, answer string) {
	fmt.Fprintln(w, answer)
}

func renderError(w io.Writer, err error) {
	if msg := userMessage(err); msg != "" {
		fmt.Fprintln(w, msg)
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}
