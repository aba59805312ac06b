package formatter

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
)

// RenderDiagnostics prints one "path:line:col: severity: message" line per
// diagnostic, with one-based line and column.
func RenderDiagnostics(path string, diags []protocol.Diagnostic, noColor bool) string {
	var b strings.Builder
	for _, d := range diags {
		sev := severityName(d.Severity)
		if !noColor {
			sev = warningStyle.Render(sev)
		}
		fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n",
			path, d.Range.Start.Line+1, d.Range.Start.Character+1, sev, d.Message)
	}
	return b.String()
}

func severityName(s protocol.DiagnosticSeverity) string {
	switch s {
	case protocol.DiagnosticSeverityError:
		return "error"
	case protocol.DiagnosticSeverityInformation:
		return "info"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	default:
		return "warning"
	}
}
