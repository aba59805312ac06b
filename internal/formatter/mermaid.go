package formatter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/oakwood-commons/stepls/internal/steps"
)

// MermaidOptions controls Mermaid diagram output formatting.
type MermaidOptions struct {
	// Direction sets the diagram direction: TD, LR, BT or RL. Default is LR.
	Direction string
	// Root makes file nodes relative when set.
	Root string
	// MaxLabelLen truncates step labels. 0 = no truncation.
	MaxLabelLen int
}

// FormatStepsMermaid renders recs as a Mermaid flowchart with one node per
// declaration file and an edge to each step it declares. Edges carry the
// step usage count.
func FormatStepsMermaid(recs []steps.Record, opts MermaidOptions) string {
	dir := opts.Direction
	if dir == "" {
		dir = "LR"
	}
	lines := []string{"graph " + dir}

	byFile := make(map[string][]steps.Record)
	for _, rec := range recs {
		byFile[rec.Path] = append(byFile[rec.Path], rec)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		rel := relPath(f, opts.Root)
		fileID := "f_" + SanitizeMermaidID(rel)
		lines = append(lines, fmt.Sprintf("    %s[\"%s\"]", fileID, escapeMermaidLabel(rel)))
		for _, rec := range byFile[f] {
			label := rec.Label
			if opts.MaxLabelLen > 0 {
				label = truncate(label, opts.MaxLabelLen)
			}
			lines = append(lines,
				fmt.Sprintf("    %s(\"%s\")", rec.ID, escapeMermaidLabel(rec.Category.String()+": "+label)),
				fmt.Sprintf("    %s -->|%d| %s", fileID, rec.Usage, rec.ID),
			)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func escapeMermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeMermaidID creates a valid Mermaid node ID from a string.
func SanitizeMermaidID(s string) string {
	return nonAlphanumeric.ReplaceAllString(s, "_")
}
