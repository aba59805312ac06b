package formatter

import (
	"path/filepath"
	"strconv"

	"github.com/oakwood-commons/stepls/internal/steps"
)

// Step table columns in display order.
const (
	ColumnLabel    = "LABEL"
	ColumnCategory = "CATEGORY"
	ColumnUsage    = "USAGE"
	ColumnLocation = "LOCATION"
	ColumnRegex    = "REGEX"
)

// StepColumns lists the columns of the step table.
var StepColumns = []string{ColumnLabel, ColumnCategory, ColumnUsage, ColumnLocation, ColumnRegex}

var stepHints = map[string]ColumnHint{
	ColumnLabel:    {Priority: 4},
	ColumnCategory: {Priority: 2},
	ColumnUsage:    {Priority: 3, Align: "right"},
	ColumnLocation: {Priority: 1},
	ColumnRegex:    {Priority: 0, MaxWidth: 60},
}

// StepOptions configures step rendering.
type StepOptions struct {
	// Root makes locations relative when set.
	Root string
	// NoColor disables color output.
	NoColor bool
	// TotalWidth is the table width. If 0, uses terminal width.
	TotalWidth int
	// HiddenColumns names step columns to omit, case-insensitively.
	HiddenColumns []string
}

// Location formats the declaration site of rec as path:line with a
// one-based line number.
func Location(rec steps.Record, root string) string {
	return relPath(rec.Path, root) + ":" + strconv.Itoa(rec.Line+1)
}

func relPath(path, root string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}

// StepRows returns one table row per record, aligned with StepColumns.
func StepRows(recs []steps.Record, root string) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.Label,
			rec.Category.String(),
			strconv.Itoa(rec.Usage),
			Location(rec, root),
			rec.Source,
		})
	}
	return rows
}

// RenderSteps renders recs as a columnar table. It returns "" for no records.
func RenderSteps(recs []steps.Record, opts StepOptions) string {
	return RenderColumnarTable(StepColumns, StepRows(recs, opts.Root), ColumnarOptions{
		NoColor:       opts.NoColor,
		TotalWidth:    opts.TotalWidth,
		HiddenColumns: opts.HiddenColumns,
		ColumnHints:   stepHints,
	})
}

// StepDetailRows returns the KEY/VALUE rows describing one record. Empty
// description and documentation are left out.
func StepDetailRows(rec steps.Record, root string) [][]string {
	rows := [][]string{
		{"id", rec.ID},
		{"label", rec.Label},
		{"keyword", rec.Keyword},
		{"category", rec.Category.String()},
		{"regex", rec.Source},
		{"location", Location(rec, root)},
		{"usage", strconv.Itoa(rec.Usage)},
	}
	if rec.Description != "" {
		rows = append(rows, []string{"description", rec.Description})
	}
	if rec.Documentation != "" {
		rows = append(rows, []string{"documentation", rec.Documentation})
	}
	return rows
}

// RenderStep renders one record as a KEY/VALUE table.
func RenderStep(rec steps.Record, opts StepOptions) string {
	valueWidth := 0
	if opts.TotalWidth > 0 {
		valueWidth = opts.TotalWidth - len("documentation") - 2
	}
	return RenderRows(StepDetailRows(rec, opts.Root), opts.NoColor, 0, valueWidth)
}
