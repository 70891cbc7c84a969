package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MetaFilename is the metadata key every stored document carries.
const MetaFilename = "filename"

// Metadata is an open string map attached to a document. Only MetaFilename
// is required; other keys may be added without a schema change.
type Metadata map[string]string

// Clone returns an independent copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Filename returns the MetaFilename entry, or "" when absent.
func (m Metadata) Filename() string {
	return m[MetaFilename]
}

// Document is a stored record. It is created once by the store and never
// modified afterwards.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
	Vector   []float32
}

// Match is one ranked hit from a store query.
type Match struct {
	Document Document
	Score    float64
}

// Result is the caller-facing form of a retrieved document.
type Result struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	Score    float64           `json:"score"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewResult converts a store match into a Result.
func NewResult(m Match) Result {
	return Result{
		ID:       m.Document.ID,
		Filename: m.Document.Metadata.Filename(),
		Score:    m.Score,
		Text:     m.Document.Text,
		Metadata: m.Document.Metadata.Clone(),
	}
}

// Input is one named text blob handed to the ingestion pipeline.
type Input struct {
	Source  string
	Content string
}

// ItemFailure records why a single input was not stored.
type ItemFailure struct {
	Source string
	Err    error
}

// String renders the failure as "<file>: <error>". Errors that already
// lead with the file name are left as they are.
func (f ItemFailure) String() string {
	msg := f.Err.Error()
	name := filepath.Base(f.Source)
	if f.Source == "" || strings.HasPrefix(msg, name+":") || strings.HasPrefix(msg, name+" ") {
		return msg
	}
	return name + ": " + msg
}

// BatchReport aggregates the outcome of a batch ingestion. Added keeps input
// order; a failure never removes an earlier success.
type BatchReport struct {
	Added    []string
	Failures []ItemFailure
}

// Total returns the number of inputs the report covers.
func (r *BatchReport) Total() int {
	return len(r.Added) + len(r.Failures)
}

// Summary renders the report as human-readable status text.
func (r *BatchReport) Summary() string {
	if r.Total() == 0 {
		return "No files uploaded."
	}
	var parts []string
	if len(r.Added) > 0 {
		parts = append(parts, fmt.Sprintf("Uploaded %d file(s): [%s]", len(r.Added), strings.Join(r.Added, " ")))
	}
	if len(r.Failures) > 0 {
		lines := make([]string, len(r.Failures))
		for i, f := range r.Failures {
			lines[i] = f.String()
		}
		parts = append(parts, "Errors:\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n")
}
