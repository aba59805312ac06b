// Package formatter renders step catalogues and diagnostics for the terminal
// and for documents.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")
	defaultWarning    = lipgloss.Color("214")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	warningStyle   lipgloss.Style
)

// TableColors controls the rendered colors. Nil fields fall back to the
// ANSI 256 defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	WarningColor   color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

// SetTableTheme overrides the package styles.
func SetTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.WarningColor, defaultWarning))
}

//nolint:gochecknoinits // initialize default theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}

// flatten keeps a cell on one line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate cuts s to maxLen display cells, ending in "..." when there is
// room for it.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight left-aligns s in width display cells, cutting it when longer.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s in width display cells.
func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return truncate(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}

// getTerminalWidth returns the terminal width, or 120 when stdout is not a
// terminal.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}

// RenderRows prints a KEY/VALUE table for rows given as [key, value] pairs.
// A keyColWidth of 0 sizes the key column to its content; a valueColWidth
// of 0 gives the value column the rest of the terminal.
func RenderRows(rows [][]string, noColor bool, keyColWidth, valueColWidth int) string {
	const sepWidth = 2
	const minValueWidth = 20
	sep := strings.Repeat(" ", sepWidth)

	keyWidth := keyColWidth
	if keyWidth <= 0 {
		keyWidth = runewidth.StringWidth("KEY")
		for _, row := range rows {
			if len(row) > 0 {
				keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
			}
		}
	}
	valueWidth := valueColWidth
	if valueWidth <= 0 {
		valueWidth = getTerminalWidth() - keyWidth - sepWidth
	}
	valueWidth = max(valueWidth, minValueWidth)

	var b strings.Builder
	headerKey := padRight("KEY", keyWidth)
	headerValue := padRight("VALUE", valueWidth)
	separator := strings.Repeat("─", keyWidth+sepWidth+valueWidth)
	if !noColor {
		headerKey = headerStyle.Render(headerKey)
		headerValue = headerStyle.Render(headerValue)
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(headerKey + sep + headerValue + "\n")
	b.WriteString(separator + "\n")

	for _, row := range rows {
		var key, val string
		if len(row) > 0 {
			key = row[0]
		}
		if len(row) > 1 {
			val = flatten(row[1])
		}
		keyStr := padRight(truncate(key, keyWidth), keyWidth)
		valStr := strings.TrimRight(padRight(truncate(val, valueWidth), valueWidth), " ")
		if !noColor {
			keyStr = keyStyle.Render(keyStr)
			valStr = valueStyle.Render(valStr)
		}
		b.WriteString(keyStr + sep + valStr + "\n")
	}
	return b.String()
}
