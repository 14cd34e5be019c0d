package caplet

import (
	"fmt"

	"github.com/PaesslerAG/gval"
)

// EvaluateCondition evaluates a Caplet-Condition expression (spec.md
// §4.8 supplement) against the manifest's resolved attributes: a
// boolean expression using the attribute name as a gval variable, e.g.
// `capsule.mode == "debug"` or `!disableAgent`. Grounded on the
// teacher's own gval.Evaluate use in engine/labels, simplified here
// since conditions reference plain attribute values rather than the
// label-selector's key=value matching grammar.
func EvaluateCondition(expr string, attrs map[string]string) (bool, error) {
	params := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		params[k] = v
	}
	val, err := gval.Evaluate(expr, params)
	if err != nil {
		return false, fmt.Errorf("caplet: invalid condition %q: %w", expr, err)
	}
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("caplet: condition %q must evaluate to a boolean, got %T", expr, val)
	}
	return b, nil
}

// SelectActive filters names (a Caplets list) down to those whose
// Caplet-Condition entry, if any, evaluates true under attrs. A name
// absent from conditions is always active (back-compatible with plain
// spec.md semantics, spec.md §4.8 supplement).
func SelectActive(names []string, conditions map[string]string, attrs map[string]string) ([]string, error) {
	var out []string
	for _, name := range names {
		expr, hasCondition := conditions[name]
		if !hasCondition {
			out = append(out, name)
			continue
		}
		active, err := EvaluateCondition(expr, attrs)
		if err != nil {
			return nil, err
		}
		if active {
			out = append(out, name)
		}
	}
	return out, nil
}
