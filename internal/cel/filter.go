package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/oakwood-commons/stepls/internal/steps"
)

// StepFilter is a compiled boolean expression over one step, bound to
// "step". Example: step.category == "Given" && step.usage == 0
type StepFilter struct {
	expr string
	prg  cel.Program
}

// NewStepFilter compiles expr. It must produce a bool.
func NewStepFilter(expr string) (*StepFilter, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter %q must return bool, not %s", expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &StepFilter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *StepFilter) String() string {
	return f.expr
}

// Match reports whether rec satisfies the filter.
func (f *StepFilter) Match(rec steps.Record) (bool, error) {
	vars := RecordVars(rec)
	out, _, err := f.prg.Eval(map[string]interface{}{
		"_":     vars,
		StepVar: vars,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := ToGo(out).(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %v, not bool", f.expr, out)
	}
	return b, nil
}

// Apply returns the records that satisfy the filter, in order.
func (f *StepFilter) Apply(recs []steps.Record) ([]steps.Record, error) {
	out := make([]steps.Record, 0, len(recs))
	for _, r := range recs {
		ok, err := f.Match(r)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", r.ID, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
