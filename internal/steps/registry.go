// Package steps holds the registry of compiled step records and their usage
// counters.
package steps

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/OneOfOne/xxhash"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/pattern"
	"github.com/oakwood-commons/stepls/internal/scanner"
	"github.com/oakwood-commons/stepls/pkg/logger"
)

// Record is one compiled step. Records held by a registry snapshot are never
// modified; Usage is filled in on the copies handed out.
type Record struct {
	ID            string           `json:"id" yaml:"id"`
	Label         string           `json:"label" yaml:"label"`
	Body          string           `json:"body" yaml:"body"`
	Source        string           `json:"regex" yaml:"regex"`
	Description   string           `json:"description" yaml:"description"`
	Documentation string           `json:"documentation" yaml:"documentation"`
	Path          string           `json:"path" yaml:"path"`
	Line          int              `json:"line" yaml:"line"`
	Column        int              `json:"column" yaml:"column"`
	Keyword       string           `json:"keyword" yaml:"keyword"`
	Category      gherkin.Category `json:"category" yaml:"category"`
	Usage         int              `json:"usage" yaml:"usage"`

	Full    *pattern.Matcher `json:"-" yaml:"-"`
	Partial *pattern.Matcher `json:"-" yaml:"-"`
}

// StepID derives the content-addressed identifier of a step label.
func StepID(label string) string {
	return fmt.Sprintf("step%016x", xxhash.ChecksumString64(label))
}

type snapshot struct {
	records []*Record
	byID    map[string]*Record
}

var emptySnapshot = &snapshot{byID: map[string]*Record{}}

// Registry owns the current snapshot of records and the usage counters.
// Populate swaps in a new snapshot; readers keep whatever snapshot they
// loaded. Counters are keyed by id and survive every rebuild.
type Registry struct {
	build    sync.Mutex
	scanner  *scanner.Scanner
	compiler *pattern.Compiler
	log      logr.Logger

	current atomic.Pointer[snapshot]

	mu     sync.Mutex
	counts map[string]int
}

// NewRegistry returns an empty registry that scans with sc and compiles
// with c.
func NewRegistry(sc *scanner.Scanner, c *pattern.Compiler, lgr logr.Logger) *Registry {
	r := &Registry{
		scanner:  sc,
		compiler: c,
		log:      lgr,
		counts:   make(map[string]int),
	}
	r.current.Store(emptySnapshot)
	return r
}

// Compiler returns the compiler used for step bodies.
func (r *Registry) Compiler() *pattern.Compiler {
	r.build.Lock()
	defer r.build.Unlock()
	return r.compiler
}

// Reconfigure replaces the scanner and compiler used by later builds. The
// current snapshot and the usage counters are kept.
func (r *Registry) Reconfigure(sc *scanner.Scanner, c *pattern.Compiler) {
	r.build.Lock()
	r.scanner = sc
	r.compiler = c
	r.build.Unlock()
}

// Populate rebuilds the registry from every file matched by globs under
// root. Unusable glob patterns are returned as an error after the files of
// the remaining patterns have been loaded.
func (r *Registry) Populate(root string, globs []string) error {
	r.build.Lock()
	defer r.build.Unlock()
	files, err := scanner.ExpandGlobs(root, globs)
	var decls []scanner.Declaration
	for _, f := range files {
		decls = append(decls, r.scanner.ScanFile(f)...)
	}
	r.load(decls)
	r.log.Info("step registry populated", logger.CountKey, r.Len(), "files", len(files))
	return err
}

// Load rebuilds the registry from already scanned declarations. Within one
// call the first record of a given id wins.
func (r *Registry) Load(decls []scanner.Declaration) {
	r.build.Lock()
	defer r.build.Unlock()
	r.load(decls)
}

func (r *Registry) load(decls []scanner.Declaration) {
	next := &snapshot{byID: make(map[string]*Record)}
	for _, d := range decls {
		for _, c := range r.compiler.Compile(d.Body) {
			id := StepID(c.Label)
			if _, dup := next.byID[id]; dup {
				continue
			}
			rec := &Record{
				ID:            id,
				Label:         c.Label,
				Body:          c.Body,
				Source:        c.Source,
				Description:   d.Description,
				Documentation: d.Documentation,
				Path:          d.Path,
				Line:          d.Line,
				Column:        d.Column,
				Keyword:       d.Keyword,
				Category:      d.Category,
				Full:          c.Full,
				Partial:       c.Partial,
			}
			next.records = append(next.records, rec)
			next.byID[id] = rec
		}
	}
	r.current.Store(next)
}

// Len returns the number of records in the current snapshot.
func (r *Registry) Len() int {
	return len(r.current.Load().records)
}

// GetAll returns copies of every record in scan order.
func (r *Registry) GetAll() []Record {
	snap := r.current.Load()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(snap.records))
	for i, rec := range snap.records {
		out[i] = *rec
		out[i].Usage = r.counts[rec.ID]
	}
	return out
}

// Get returns the record with id.
func (r *Registry) Get(id string) (Record, bool) {
	rec, ok := r.current.Load().byID[id]
	if !ok {
		return Record{}, false
	}
	return r.withUsage(rec), true
}

// UsageCount returns how often the step with id has been used.
func (r *Registry) UsageCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[id]
}

// IncrementUsage bumps the counter for id. Unknown ids are counted too so an
// acceptance recorded during a rebuild is not lost.
func (r *Registry) IncrementUsage(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	r.counts[id]++
	r.mu.Unlock()
}

// Find returns the first record whose full matcher accepts text.
func (r *Registry) Find(text string) (Record, bool) {
	return r.find(text, func(*Record) bool { return true })
}

// FindCategory is Find restricted to records declared under cat.
func (r *Registry) FindCategory(text string, cat gherkin.Category) (Record, bool) {
	return r.find(text, func(rec *Record) bool { return rec.Category == cat })
}

func (r *Registry) find(text string, keep func(*Record) bool) (Record, bool) {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	for _, rec := range r.current.Load().records {
		if keep(rec) && rec.Full.MatchString(text) {
			return r.withUsage(rec), true
		}
	}
	return Record{}, false
}

// RecomputeUsage resets every counter and tallies the step lines of every
// document matched by docGlob under root. match returns the ids that the
// lines of one document resolve to.
func (r *Registry) RecomputeUsage(root, docGlob string, match func(text string) []string) error {
	files, err := scanner.ExpandGlob(root, docGlob)
	if err != nil {
		return err
	}
	r.build.Lock()
	fp := r.scanner.Files()
	r.build.Unlock()
	counts := make(map[string]int)
	for _, f := range files {
		for _, id := range match(fp.ReadFile(f)) {
			counts[id]++
		}
	}
	r.mu.Lock()
	r.counts = counts
	r.mu.Unlock()
	r.log.V(logger.TraceLevel).Info("usage recomputed", "documents", len(files), logger.CountKey, len(counts))
	return nil
}

func (r *Registry) withUsage(rec *Record) Record {
	out := *rec
	out.Usage = r.UsageCount(rec.ID)
	return out
}
