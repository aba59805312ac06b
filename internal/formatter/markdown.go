package formatter

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/steps"
)

// CatalogueOptions controls the step catalogue document.
type CatalogueOptions struct {
	// Title heads the document. Default is "Step catalogue".
	Title string
	// Root makes locations relative when set.
	Root string
}

func (o CatalogueOptions) title() string {
	if o.Title == "" {
		return "Step catalogue"
	}
	return o.Title
}

// RenderCatalogueMarkdown renders recs as a markdown document with one
// section per category and one table row per step.
func RenderCatalogueMarkdown(recs []steps.Record, opts CatalogueOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.title())
	if len(recs) == 0 {
		b.WriteString("No steps found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d steps.\n", len(recs))

	for c := gherkin.Given; c <= gherkin.Other; c++ {
		var rows []steps.Record
		for _, rec := range recs {
			if rec.Category == c {
				rows = append(rows, rec)
			}
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", c)
		b.WriteString("| Step | Usage | Location | Description |\n")
		b.WriteString("|------|------:|----------|-------------|\n")
		for _, rec := range rows {
			fmt.Fprintf(&b, "| `%s` | %d | %s | %s |\n",
				markdownCell(strings.ReplaceAll(rec.Label, "`", "'")),
				rec.Usage,
				markdownCell(Location(rec, opts.Root)),
				markdownCell(rec.Description))
		}
	}
	return b.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderCatalogueHTML renders the markdown catalogue as a standalone HTML
// page.
func RenderCatalogueHTML(recs []steps.Record, opts CatalogueOptions) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	doc := parser.NewWithExtensions(extensions).Parse([]byte(RenderCatalogueMarkdown(recs, opts)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: opts.title(),
	})
	return markdown.Render(doc, renderer)
}
