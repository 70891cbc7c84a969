package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/bigdatawirtz/semanticsearch/internal/logging"
	"github.com/bigdatawirtz/semanticsearch/internal/port"
)

//go:embed prompts/*.tmpl
var promptTemplates embed.FS

var answerTemplate = template.Must(template.ParseFS(promptTemplates, "prompts/answer.tmpl"))

const truncatedMarker = "\n[truncated]"

// AnswerUseCase grounds a completion on the best matching document.
type AnswerUseCase struct {
	retrieve       *RetrieveUseCase
	completer      port.Completer
	maxDocumentLen int
	logger         *logging.Logger
}

// NewAnswerUseCase creates a new answer use case. maxDocumentChars <= 0
// embeds the document in full.
func NewAnswerUseCase(retrieve *RetrieveUseCase, completer port.Completer, maxDocumentChars int, logger *logging.Logger) *AnswerUseCase {
	if logger == nil {
		logger = logging.Noop()
	}
	return &AnswerUseCase{
		retrieve:       retrieve,
		completer:      completer,
		maxDocumentLen: maxDocumentChars,
		logger:         logger,
	}
}

// Synthesize retrieves the best document for question and returns the
// completion service's answer verbatim. Completion failures are returned
// unchanged.
func (u *AnswerUseCase) Synthesize(ctx context.Context, question string) (string, error) {
	best, err := u.retrieve.RetrieveBest(ctx, question)
	if err != nil {
		return "", err
	}

	prompt, err := BuildPrompt(best.Text, question, u.maxDocumentLen)
	if err != nil {
		return "", err
	}

	answer, err := u.completer.Complete(ctx, prompt)
	u.logger.LogCompletion(ctx, u.completer.ModelName(), len(prompt), err)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// BuildPrompt renders the answer prompt around exactly one document.
// A positive maxChars cuts longer documents at a rune boundary.
func BuildPrompt(document, question string, maxChars int) (string, error) {
	if maxChars > 0 && utf8.RuneCountInString(document) > maxChars {
		document = truncateRunes(document, maxChars) + truncatedMarker
	}

	var buf bytes.Buffer
	err := answerTemplate.Execute(&buf, struct {
		Document string
		Question string
	}{document, question})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
