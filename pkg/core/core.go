// Package core is the editor-facing step engine: it validates scenario
// lines, resolves definitions, and produces completions over the steps
// declared in a workspace.
package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-logr/logr"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/oakwood-commons/stepls/internal/completion"
	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/pattern"
	"github.com/oakwood-commons/stepls/internal/resolver"
	"github.com/oakwood-commons/stepls/internal/scanner"
	"github.com/oakwood-commons/stepls/internal/steps"
	"github.com/oakwood-commons/stepls/pkg/logger"
)

// DiagnosticSource tags every diagnostic the engine produces.
const DiagnosticSource = "stepls"

// Record is a registered step as exposed to callers.
type Record = steps.Record

// Engine answers validation, definition, and completion requests for one
// workspace root.
type Engine struct {
	root  string
	files scanner.Provider
	log   logr.Logger

	registry *steps.Registry
	resolver *resolver.Resolver

	mu         sync.RWMutex
	cfg        *config.Config
	completion *completion.Engine
}

// Option configures the Engine.
type Option func(*Engine)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithFiles sets the provider used to read declaration and scenario files.
func WithFiles(p scanner.Provider) Option {
	return func(e *Engine) {
		e.files = p
	}
}

// WithLogger sets the logger.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.log = lgr
	}
}

// New creates an Engine for root and loads its steps. A load that could not
// expand every glob still returns a usable engine along with the error.
func New(root string, opts ...Option) (*Engine, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	e := &Engine{
		root: abs,
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg == nil {
		e.cfg = config.Default()
	}
	if e.files == nil {
		e.files = scanner.OSProvider{Log: e.log}
	}
	sc, c, err := e.build(e.cfg)
	if err != nil {
		return nil, err
	}
	e.registry = steps.NewRegistry(sc, c, logger.Named(&e.log, "registry"))
	e.resolver = resolver.New(e.registry)
	e.completion = e.newCompletion(c, e.cfg)
	return e, e.Reload()
}

func (e *Engine) build(cfg *config.Config) (*scanner.Scanner, *pattern.Compiler, error) {
	sc, err := scanner.New(cfg.ScannerOptions(), e.files, logger.Named(&e.log, "scanner"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return sc, pattern.NewCompiler(cfg.CompilerOptions(), logger.Named(&e.log, "compiler")), nil
}

func (e *Engine) newCompletion(c *pattern.Compiler, cfg *config.Config) *completion.Engine {
	return completion.NewEngine(e.registry, c, e.resolver, completion.Options{Strict: cfg.StrictGherkinCompletion})
}

// Root returns the absolute workspace root.
func (e *Engine) Root() string {
	return e.root
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// SetConfig switches to cfg and reloads. Usage counters are kept.
func (e *Engine) SetConfig(cfg *config.Config) error {
	sc, c, err := e.build(cfg)
	if err != nil {
		return err
	}
	e.registry.Reconfigure(sc, c)
	e.mu.Lock()
	e.cfg = cfg
	e.completion = e.newCompletion(c, cfg)
	e.mu.Unlock()
	return e.Reload()
}

// Reload rescans every declaration file and, when usage synchronization is
// on, recounts step usage from the scenario documents.
func (e *Engine) Reload() error {
	cfg := e.Config()
	err := e.registry.Populate(e.root, cfg.Steps)
	if glob := cfg.FeatureGlob(); glob != "" {
		if uerr := e.registry.RecomputeUsage(e.root, glob, e.resolver.DocumentUsage); uerr != nil {
			e.log.Error(uerr, "usage synchronization failed", "glob", glob)
		}
	}
	if err != nil {
		return fmt.Errorf("load steps: %w", err)
	}
	return nil
}

// Steps returns every registered step in declaration order.
func (e *Engine) Steps() []Record {
	return e.registry.GetAll()
}

// UsageCount returns how often the step with id has been used.
func (e *Engine) UsageCount(id string) int {
	return e.registry.UsageCount(id)
}

// ValidateLine checks line n of text. It returns nil when the line is not a
// step line or matches a registered step.
func (e *Engine) ValidateLine(line string, n int, text string) *protocol.Diagnostic {
	return e.validate(line, n, resolver.NewDocument(text), e.Config().StrictGherkinValidation)
}

// ValidateDocument checks every line of text.
func (e *Engine) ValidateDocument(text string) []protocol.Diagnostic {
	doc := resolver.NewDocument(text)
	strict := e.Config().StrictGherkinValidation
	out := make([]protocol.Diagnostic, 0)
	for n, line := range doc.Lines() {
		if d := e.validate(line, n, doc, strict); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func (e *Engine) validate(line string, n int, doc *resolver.Document, strict bool) *protocol.Diagnostic {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	_, res, ok := e.resolver.Match(line, n, doc, strict)
	if ok || !res.IsStepLine {
		return nil
	}
	return &protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(n), Character: uint32(res.LeadingUTF16)},
			End:   protocol.Position{Line: uint32(n), Character: uint32(gherkin.UTF16Len(line))},
		},
		Severity: protocol.DiagnosticSeverityWarning,
		Source:   DiagnosticSource,
		Message:  `Was unable to find step for "` + strings.TrimSpace(line) + `"`,
	}
}

// GetDefinition returns the declaration of the step used on line n of text.
func (e *Engine) GetDefinition(line string, n int, text string) *protocol.Location {
	rec, _, ok := e.resolver.Match(line, n, resolver.NewDocument(text), false)
	if !ok {
		return nil
	}
	loc := Location(rec)
	return &loc
}

// Location returns the declaration position of rec.
func Location(rec Record) protocol.Location {
	pos := protocol.Position{Line: uint32(rec.Line), Character: uint32(rec.Column)}
	return protocol.Location{
		URI:   protocol.DocumentURI(uri.File(rec.Path)),
		Range: protocol.Range{Start: pos, End: pos},
	}
}

// GetCompletion returns completion items for the cursor at pos on line. It
// returns nil when the line is not a step line.
func (e *Engine) GetCompletion(line string, pos protocol.Position, text string) []protocol.CompletionItem {
	e.mu.RLock()
	eng := e.completion
	e.mu.RUnlock()

	cands := eng.Complete(line, int(pos.Line), int(pos.Character), resolver.NewDocument(text))
	if cands == nil {
		return nil
	}
	items := make([]protocol.CompletionItem, 0, len(cands))
	for _, c := range cands {
		items = append(items, protocol.CompletionItem{
			Label:            c.Label,
			Kind:             protocol.CompletionItemKindSnippet,
			Data:             c.ID,
			Detail:           c.Detail,
			Documentation:    c.Documentation,
			SortText:         c.SortText,
			InsertText:       c.InsertText,
			InsertTextFormat: protocol.InsertTextFormatSnippet,
		})
	}
	return items
}

// ResolveCompletion records that item was accepted and returns it.
func (e *Engine) ResolveCompletion(item protocol.CompletionItem) protocol.CompletionItem {
	if id, ok := item.Data.(string); ok {
		e.registry.IncrementUsage(id)
		e.log.V(logger.TraceLevel).Info("completion accepted", logger.StepKey, id)
	}
	return item
}

// ValidateConfiguration warns about every configured steps glob that
// currently matches no file, at that glob's position in the configuration
// source.
func (e *Engine) ValidateConfiguration() []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0)
	for _, p := range e.Config().GlobPositions() {
		files, err := scanner.ExpandGlob(e.root, p.Glob)
		if err == nil && len(files) > 0 {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(p.Line), Character: uint32(p.Column)},
				End:   protocol.Position{Line: uint32(p.Line), Character: uint32(p.EndColumn)},
			},
			Severity: protocol.DiagnosticSeverityWarning,
			Source:   DiagnosticSource,
			Message:  "No steps files found",
		})
	}
	return out
}
