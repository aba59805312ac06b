// Package pattern compiles raw step declaration bodies into full and
// partial matchers, labels, and completion insertion text.
package pattern

import (
	"strings"

	"github.com/go-logr/logr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oakwood-commons/stepls/pkg/logger"
)

// Parameter is a project-specific literal substitution applied to a body
// before any other stage.
type Parameter struct {
	Parameter string `yaml:"parameter" json:"parameter"`
	Value     string `yaml:"value" json:"value"`
}

// Options configures a Compiler.
type Options struct {
	Parameters    []Parameter
	Invariants    bool
	SmartSnippets bool
}

// Compiled is one matcher set produced from a declaration body. A body with
// alternations produces several.
type Compiled struct {
	Body    string
	Source  string
	Full    *Matcher
	Partial *Matcher
	Label   string
}

const prefixCacheSize = 4096

// Compiler turns declaration bodies into Compiled matchers. It is safe for
// concurrent use.
type Compiler struct {
	opts     Options
	prefixes *lru.Cache[string, *Matcher]
	log      logr.Logger
}

// NewCompiler returns a Compiler for opts.
func NewCompiler(opts Options, lgr logr.Logger) *Compiler {
	cache, err := lru.New[string, *Matcher](prefixCacheSize)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &Compiler{opts: opts, prefixes: cache, log: lgr}
}

// Options returns the options the compiler was built with.
func (c *Compiler) Options() Options {
	return c.opts
}

// Substitute applies the custom parameters, in order, as literal
// find-and-replace pairs.
func (c *Compiler) Substitute(body string) string {
	for _, p := range c.opts.Parameters {
		if p.Parameter == "" {
			continue
		}
		body = strings.ReplaceAll(body, p.Parameter, p.Value)
	}
	return body
}

// Expand returns the invariants of body, or body alone when invariant
// expansion is disabled.
func (c *Compiler) Expand(body string) []string {
	if !c.opts.Invariants {
		return []string{body}
	}
	return Invariants(body)
}

// RegexText is the full pipeline, custom parameters included.
func (c *Compiler) RegexText(body string) string {
	return RegexText(c.Substitute(body))
}

// Compile produces one Compiled per invariant of body. Invariants whose
// regex does not compile are logged and dropped.
func (c *Compiler) Compile(body string) []Compiled {
	body = c.Substitute(body)
	variants := c.Expand(body)
	out := make([]Compiled, 0, len(variants))
	for _, v := range variants {
		src := RegexText(v)
		full, err := CompileMatcher(Anchor(src))
		if err != nil {
			c.log.V(logger.TraceLevel).Info("dropping step body", logger.StepKey, v, "error", err.Error())
			continue
		}
		partial, err := CompileMatcher(PartialText(src))
		if err != nil {
			c.log.V(logger.TraceLevel).Info("partial matcher fell back to full matcher", logger.StepKey, v, "error", err.Error())
			partial = full
		}
		out = append(out, Compiled{
			Body:    v,
			Source:  full.String(),
			Full:    full,
			Partial: partial,
			Label:   Label(v),
		})
	}
	return out
}

// prefixMatcher returns the cached "^prefix" regex used while computing
// insertion text.
func (c *Compiler) prefixMatcher(prefix string) *Matcher {
	if re, ok := c.prefixes.Get(prefix); ok {
		return re
	}
	re, err := CompileMatcher("^" + prefix)
	if err != nil {
		re = MustCompileMatcher("^" + QuoteMatcher(prefix))
	}
	c.prefixes.Add(prefix, re)
	return re
}
