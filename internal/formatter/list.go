package formatter

import (
	"strconv"
	"strings"

	"github.com/oakwood-commons/stepls/internal/steps"
)

// ListOptions controls list output formatting.
type ListOptions struct {
	Root    string // locations are made relative to Root when set
	NoColor bool   // disable color output
}

// FormatStepsList renders each record as a numbered header followed by its
// indented fields. Multi-line documentation keeps its line breaks.
func FormatStepsList(recs []steps.Record, opts ListOptions) string {
	var b strings.Builder
	for i, rec := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		header := strconv.Itoa(i+1) + ". " + rec.Label
		if !opts.NoColor {
			header = headerStyle.Render(header)
		}
		b.WriteString(header + "\n")
		for _, row := range StepDetailRows(rec, opts.Root) {
			if row[0] == "label" {
				continue
			}
			writeListField(&b, row[0], row[1], opts.NoColor)
		}
	}
	return b.String()
}

func writeListField(b *strings.Builder, key, value string, noColor bool) {
	lines := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	if !noColor {
		key = keyStyle.Render(key)
		for i := range lines {
			lines[i] = valueStyle.Render(lines[i])
		}
	}
	b.WriteString("  " + key + ": " + lines[0] + "\n")
	for _, l := range lines[1:] {
		b.WriteString("    " + l + "\n")
	}
}
