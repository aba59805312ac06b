package resolver

import (
	"regexp"
	"strings"
)

// Document is a scenario document split into lines.
type Document struct {
	lines []string
}

// NewDocument splits text on \n and \r\n.
func NewDocument(text string) *Document {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &Document{lines: lines}
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Line returns line n, or "" when n is out of range.
func (d *Document) Line(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return d.lines[n]
}

// Lines returns the document lines. The slice must not be modified.
func (d *Document) Lines() []string {
	return d.lines
}

var examplesRe = regexp.MustCompile(`^\s*(?:Examples|Scenarios):`)

// OutlineVars returns the placeholder values for the scenario containing
// line n: the names of the header row of the first examples table after n
// mapped to the cells of its first data row. Empty cells are left out.
func OutlineVars(doc *Document, n int) map[string]string {
	vars := make(map[string]string)
	start := -1
	for i := n + 1; i < doc.Len(); i++ {
		if examplesRe.MatchString(doc.Line(i)) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return vars
	}
	var rows [][]string
scan:
	for i := start; i < doc.Len() && len(rows) < 2; i++ {
		line := strings.TrimSpace(doc.Line(i))
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "|"):
			rows = append(rows, tableCells(line))
		default:
			break scan
		}
	}
	if len(rows) < 2 {
		return vars
	}
	for i, name := range rows[0] {
		if i < len(rows[1]) && name != "" && rows[1][i] != "" {
			vars[name] = rows[1][i]
		}
	}
	return vars
}

// tableCells splits a "| a | b |" row into trimmed cells.
func tableCells(row string) []string {
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
