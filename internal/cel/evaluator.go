// Package cel evaluates CEL expressions over registered steps.
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/stepls/internal/steps"
)

// StepVar is the variable bound to the step under test in a filter.
const StepVar = "step"

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a new CEL evaluator with standard library functions.
func NewEvaluator() (*Evaluator, error) {
	env, err := newStandardCELEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// newStandardCELEnv creates a standard CEL environment with common extensions.
// Both "_" and "step" are declared; which one is bound depends on the caller.
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable("_", cel.DynType),
		cel.Variable(StepVar, cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate evaluates a CEL expression against data bound to "_".
// Example: "_.filter(s, s.usage > 0).map(s, s.label)"
func (e *Evaluator) Evaluate(expr string, data interface{}) (interface{}, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	result, _, err := prg.Eval(map[string]interface{}{
		"_":     data,
		StepVar: map[string]interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// Records converts records into the list bound to "_" by Evaluate.
func Records(recs []steps.Record) []interface{} {
	out := make([]interface{}, len(recs))
	for i, r := range recs {
		out[i] = RecordVars(r)
	}
	return out
}

// RecordVars exposes the fields of a record to CEL.
func RecordVars(r steps.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":            r.ID,
		"label":         r.Label,
		"body":          r.Body,
		"regex":         r.Source,
		"description":   r.Description,
		"documentation": r.Documentation,
		"path":          r.Path,
		"line":          int64(r.Line),
		"column":        int64(r.Column),
		"keyword":       r.Keyword,
		"category":      r.Category.String(),
		"usage":         int64(r.Usage),
	}
}

// ToGo converts CEL types to Go native types recursively.
func ToGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	if valuer, ok := val.(interface{ Value() interface{} }); ok {
		innerVal := valuer.Value()

		if refSlice, ok := innerVal.([]ref.Val); ok {
			result := make([]interface{}, len(refSlice))
			for i, elem := range refSlice {
				result[i] = ToGo(elem)
			}
			return result
		}

		if slice, ok := innerVal.([]interface{}); ok {
			result := make([]interface{}, len(slice))
			for i, elem := range slice {
				if refVal, ok := elem.(ref.Val); ok {
					result[i] = ToGo(refVal)
				} else if elemMap, ok := elem.(map[string]interface{}); ok {
					result[i] = convertMapValues(elemMap)
				} else {
					result[i] = elem
				}
			}
			return result
		}

		if m, ok := innerVal.(map[string]interface{}); ok {
			return convertMapValues(m)
		}

		// CEL map literals
		if m, ok := innerVal.(map[ref.Val]ref.Val); ok {
			result := make(map[string]interface{})
			for k, v := range m {
				keyStr := ""
				if keyVal, ok := k.(interface{ Value() interface{} }); ok {
					keyStr = fmt.Sprintf("%v", keyVal.Value())
				} else {
					keyStr = fmt.Sprintf("%v", k)
				}
				result[keyStr] = ToGo(v)
			}
			return result
		}

		return innerVal
	}

	return val
}

// convertMapValues recursively converts map values from CEL types
func convertMapValues(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range m {
		if refVal, ok := v.(ref.Val); ok {
			result[k] = ToGo(refVal)
		} else if innerMap, ok := v.(map[string]interface{}); ok {
			result[k] = convertMapValues(innerMap)
		} else if slice, ok := v.([]interface{}); ok {
			converted := make([]interface{}, len(slice))
			for i, elem := range slice {
				if refVal, ok := elem.(ref.Val); ok {
					converted[i] = ToGo(refVal)
				} else {
					converted[i] = elem
				}
			}
			result[k] = converted
		} else {
			result[k] = v
		}
	}
	return result
}
