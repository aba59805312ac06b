package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	"github.com/oakwood-commons/stepls/pkg/logger"
)

// Provider reads file contents. Implementations return an empty string for
// files that are missing or unreadable.
type Provider interface {
	ReadFile(path string) string
}

// OSProvider reads from the local file system.
type OSProvider struct {
	Log logr.Logger
}

// ReadFile implements Provider.
func (p OSProvider) ReadFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		p.Log.V(logger.TraceLevel).Info("treating unreadable file as empty", logger.PathKey, path, "error", err.Error())
		return ""
	}
	return string(b)
}

// MapProvider serves contents from memory, keyed by path. It backs open
// editor buffers and tests.
type MapProvider map[string]string

// ReadFile implements Provider.
func (m MapProvider) ReadFile(path string) string {
	return m[path]
}

// ExpandGlob returns the files matching pattern. Relative patterns are
// resolved against root and may use ** to cross directories.
func ExpandGlob(root, pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		return matches, nil
	}
	if root == "" {
		root = "."
	}
	rel := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(pattern)), "./")
	matches, err := doublestar.Glob(os.DirFS(root), rel)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	return out, nil
}

// ExpandGlobs expands every pattern in order and drops repeated paths. Bad
// patterns are reported together; the files of the good ones are still
// returned.
func ExpandGlobs(root string, patterns []string) ([]string, error) {
	var (
		out  []string
		errs error
		seen = make(map[string]bool)
	)
	for _, p := range patterns {
		matches, err := ExpandGlob(root, p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, errs
}
