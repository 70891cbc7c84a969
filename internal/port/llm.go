package port

import "context"

// Completer is an opaque text-completion service.
type Completer interface {
	// Complete sends prompt and returns the service's text verbatim.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
