package port

import "github.com/bigdatawirtz/semanticsearch/internal/domain"

// SourceReader resolves and reads the named blobs handed to ingestion.
type SourceReader interface {
	Expand(patterns []string) ([]string, error)

	Read(path string) (domain.Input, error)
}
