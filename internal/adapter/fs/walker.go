package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
)

// Walker resolves glob patterns under a root directory into document files
// and reads them as ingestion inputs.
type Walker struct {
	root     string
	includes []string
	excludes []string
}

// NewWalker creates a walker rooted at root. Empty includes match every
// *.json file.
func NewWalker(root string, includes, excludes []string) *Walker {
	if root == "" {
		root = "."
	}
	if len(includes) == 0 {
		includes = []string{"**/*.json"}
	}
	return &Walker{
		root:     root,
		includes: includes,
		excludes: excludes,
	}
}

// Expand resolves patterns to file paths. Relative patterns are matched
// against paths under the root; absolute patterns are globbed directly.
// An empty pattern list falls back to the configured includes. The result
// is de-duplicated and sorted.
func (w *Walker) Expand(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = w.includes
	}

	var relative []string
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		if !filepath.IsAbs(pattern) {
			relative = append(relative, filepath.ToSlash(filepath.Clean(pattern)))
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !w.shouldExclude(filepath.ToSlash(m)) {
				add(m)
			}
		}
	}

	if len(relative) > 0 {
		files, err := w.walk(relative)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Read loads path as an ingestion input named after the file.
func (w *Walker) Read(path string) (domain.Input, error) {
	content, err := ReadFile(path)
	if err != nil {
		return domain.Input{}, err
	}
	return domain.Input{Source: path, Content: content}, nil
}

// walk returns the files under the root that match an include pattern and
// no exclude pattern.
func (w *Walker) walk(includes []string) ([]string, error) {
	var files []string

	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(includes, relPath) && !w.shouldExclude(relPath) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func (w *Walker) shouldExclude(path string) bool {
	return matchAny(w.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// ReadFile returns the file contents as a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
