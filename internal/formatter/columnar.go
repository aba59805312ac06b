package formatter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ColumnarOptions configures columnar table rendering.
type ColumnarOptions struct {
	// NoColor disables color output.
	NoColor bool

	// TotalWidth is the total available width. If 0, uses terminal width.
	TotalWidth int

	// RowNumberStyle controls the leading row number column:
	//   "numbered" - 1, 2, 3 (default)
	//   "index"    - [0], [1], [2]
	//   "none"     - no row number column
	RowNumberStyle string

	// HiddenColumns specifies columns to omit from output.
	HiddenColumns []string

	// ColumnHints provides per-column width, priority, and alignment.
	// Keys are column names.
	ColumnHints map[string]ColumnHint
}

// RenderColumnarTable renders rows under the given column headers. Columns
// shrink lowest priority first when the table does not fit.
func RenderColumnarTable(columns []string, rows [][]string, opts ColumnarOptions) string {
	if len(columns) == 0 || len(rows) == 0 {
		return ""
	}
	cols, data := filterColumns(columns, rows, opts.HiddenColumns)
	if len(cols) == 0 {
		return ""
	}

	headers := make([]string, len(cols))
	hints := make([]ColumnHint, len(cols))
	for i, col := range cols {
		headers[i] = col
		if h, ok := opts.ColumnHints[col]; ok {
			hints[i] = h
			if h.DisplayName != "" {
				headers[i] = h.DisplayName
			}
		}
	}

	totalWidth := opts.TotalWidth
	if totalWidth <= 0 {
		totalWidth = getTerminalWidth()
	}

	const sepWidth = 2
	showRowNum := opts.RowNumberStyle != "none"
	rowNumWidth := 0
	available := totalWidth
	if showRowNum {
		rowNumWidth = len(strconv.Itoa(len(data))) + 2
		available -= rowNumWidth + sepWidth
	}
	widths := calculateColumnWidths(headers, data, available, hints)

	sep := strings.Repeat(" ", sepWidth)
	var b strings.Builder

	parts := make([]string, 0, len(headers)+1)
	if showRowNum {
		parts = append(parts, padRight("#", rowNumWidth))
	}
	for i, h := range headers {
		parts = append(parts, padRight(truncate(h, widths[i]), widths[i]))
	}
	lineWidth := 0
	for i, p := range parts {
		lineWidth += runewidth.StringWidth(p)
		if !opts.NoColor {
			parts[i] = headerStyle.Render(p)
		}
	}
	lineWidth += (len(parts) - 1) * sepWidth
	b.WriteString(strings.Join(parts, sep) + "\n")

	separator := strings.Repeat("─", lineWidth)
	if !opts.NoColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for i, row := range data {
		parts = parts[:0]
		if showRowNum {
			num := strconv.Itoa(i + 1)
			if opts.RowNumberStyle == "index" {
				num = "[" + strconv.Itoa(i) + "]"
			}
			num = padRight(num, rowNumWidth)
			if !opts.NoColor {
				num = keyStyle.Render(num)
			}
			parts = append(parts, num)
		}
		for j, w := range widths {
			val := ""
			if j < len(row) {
				val = truncate(flatten(row[j]), w)
			}
			if hints[j].Align == "right" {
				val = padLeft(val, w)
			} else {
				val = padRight(val, w)
			}
			if !opts.NoColor {
				val = valueStyle.Render(val)
			}
			parts = append(parts, val)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}
	return b.String()
}

func filterColumns(columns []string, rows [][]string, hidden []string) ([]string, [][]string) {
	if len(hidden) == 0 {
		return columns, rows
	}
	skip := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		skip[strings.ToUpper(h)] = true
	}

	keep := make([]int, 0, len(columns))
	cols := make([]string, 0, len(columns))
	for i, col := range columns {
		if !skip[strings.ToUpper(col)] {
			keep = append(keep, i)
			cols = append(cols, col)
		}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(row) {
				r[j] = row[idx]
			}
		}
		out[i] = r
	}
	return cols, out
}

func calculateColumnWidths(headers []string, rows [][]string, availableWidth int, hints []ColumnHint) []int {
	const sepWidth = 2
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(flatten(row[i])))
			}
		}
	}
	for i := range widths {
		if hints[i].MaxWidth > 0 && widths[i] > hints[i].MaxWidth {
			widths[i] = hints[i].MaxWidth
		}
	}

	usable := availableWidth - (len(headers)-1)*sepWidth
	if usable > 0 {
		widths = shrinkByPriority(widths, usable, hints)
	}
	return widths
}

// shrinkByPriority reduces widths to fit usableWidth, shrinking the lowest
// Priority columns first and never below three cells.
func shrinkByPriority(widths []int, usableWidth int, hints []ColumnHint) []int {
	const minColWidth = 3
	total := 0
	for _, w := range widths {
		total += w
	}
	excess := total - usableWidth
	if excess <= 0 {
		return widths
	}

	order := make([]int, len(widths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hints[order[a]].Priority < hints[order[b]].Priority
	})

	for _, idx := range order {
		if excess <= 0 {
			break
		}
		shrinkable := widths[idx] - minColWidth
		if shrinkable <= 0 {
			continue
		}
		shrink := min(shrinkable, excess)
		widths[idx] -= shrink
		excess -= shrink
	}
	return widths
}
