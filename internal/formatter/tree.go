package formatter

import (
	"fmt"
	"sort"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/steps"
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// Root makes file branches relative when set.
	Root string
	// NoUsage hides the usage count after each label.
	NoUsage bool
	// MaxLabelLen truncates labels longer than this. 0 = no truncation.
	MaxLabelLen int
}

// FormatStepsTree renders recs as a tree of declaration files, each holding
// its steps grouped by category. Files are sorted; steps keep declaration
// order.
func FormatStepsTree(recs []steps.Record, opts TreeOptions) string {
	byFile := make(map[string][]steps.Record)
	files := make([]string, 0)
	for _, rec := range recs {
		if _, ok := byFile[rec.Path]; !ok {
			files = append(files, rec.Path)
		}
		byFile[rec.Path] = append(byFile[rec.Path], rec)
	}
	sort.Strings(files)

	tree := treeprint.New()
	for _, path := range files {
		addFileBranch(tree.AddBranch(relPath(path, opts.Root)), byFile[path], opts)
	}
	return tree.String()
}

func addFileBranch(branch treeprint.Tree, recs []steps.Record, opts TreeOptions) {
	groups := make(map[gherkin.Category]treeprint.Tree)
	for c := gherkin.Given; c <= gherkin.Other; c++ {
		for _, rec := range recs {
			if rec.Category != c {
				continue
			}
			g, ok := groups[c]
			if !ok {
				g = branch.AddBranch(c.String())
				groups[c] = g
			}
			g.AddMetaNode(rec.Line+1, formatTreeLabel(rec, opts))
		}
	}
}

func formatTreeLabel(rec steps.Record, opts TreeOptions) string {
	label := rec.Label
	if opts.MaxLabelLen > 0 {
		label = truncate(label, opts.MaxLabelLen)
	}
	if opts.NoUsage {
		return label
	}
	return fmt.Sprintf("%s (%d)", label, rec.Usage)
}
