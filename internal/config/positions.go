package config

import (
	"strings"
	"unicode/utf16"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/stepls/internal/gherkin"
)

// EditorSettingsFile is the editor's workspace settings file, relative to
// the workspace root. Settings received over LSP are located in it.
const EditorSettingsFile = ".vscode/settings.json"

// GlobPosition locates one steps glob in the configuration source. Line and
// Column are zero-based; Column and EndColumn count UTF-16 code units.
type GlobPosition struct {
	Glob      string
	Line      int
	Column    int
	EndColumn int
}

// AttachSource records the file that settings received as JSON were
// written in. GlobPositions then points into text.
func (c *Config) AttachSource(path string, text []byte) {
	c.Path = path
	c.source = string(text)
}

// GlobPositions returns the source position of every steps glob, in
// declaration order. Globs of a JSON configuration are located by their
// quoted text in the attached source. A glob that cannot be located is
// reported at the origin.
func (c *Config) GlobPositions() []GlobPosition {
	nodes := stepsNodes(c.root)
	if nodes == nil {
		return quotedPositions(c.Steps, c.source)
	}
	out := make([]GlobPosition, 0, len(nodes))
	for _, n := range nodes {
		width := len(utf16.Encode([]rune(n.Value)))
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			width += 2
		}
		out = append(out, GlobPosition{
			Glob:      n.Value,
			Line:      n.Line - 1,
			Column:    n.Column - 1,
			EndColumn: n.Column - 1 + width,
		})
	}
	return out
}

// stepsNodes returns the scalar nodes holding the steps globs, or nil when
// the document has no steps key.
func stepsNodes(doc *yaml.Node) []*yaml.Node {
	if doc == nil || doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != "steps" {
			continue
		}
		v := m.Content[i+1]
		switch v.Kind {
		case yaml.ScalarNode:
			return []*yaml.Node{v}
		case yaml.SequenceNode:
			out := make([]*yaml.Node, 0, len(v.Content))
			for _, item := range v.Content {
				if item.Kind == yaml.ScalarNode {
					out = append(out, item)
				}
			}
			return out
		}
	}
	return nil
}

// quotedPositions finds the first occurrence of each glob, in double
// quotes, in source.
func quotedPositions(globs []string, source string) []GlobPosition {
	out := make([]GlobPosition, len(globs))
	for i, g := range globs {
		out[i] = GlobPosition{Glob: g}
		term := `"` + g + `"`
		off := strings.Index(source, term)
		if off < 0 {
			continue
		}
		before := source[:off]
		lineStart := strings.LastIndexByte(before, '\n') + 1
		col := gherkin.UTF16Len(before[lineStart:])
		out[i].Line = strings.Count(before, "\n")
		out[i].Column = col
		out[i].EndColumn = col + gherkin.UTF16Len(term)
	}
	return out
}
