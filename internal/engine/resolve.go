package engine

import (
	"fmt"
	"strings"
)

// Resolve merges explicit parameter values, the stdin-derived value, and
// declared defaults into one typed parameter set.
//
// Stdin binding prefers the first unset parameter whose declared type equals
// the inferred type (declaration order); failing that it falls back to the
// first unset parameter of any type, coercing toward its declared type. The
// reserved keys "stdin" (raw text) and "input" (inferred value) are always
// populated when piped text is present, so snippets have an escape hatch
// when the heuristic picks the wrong target.
func Resolve(specs []ParameterSpec, inv RawInvocation) ResolvedParameters {
	resolved := make(ResolvedParameters, len(specs)+2)

	byName := make(map[string]ParameterSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}

	// Explicit --name=value pairs, coerced by declared type when one exists.
	for name, raw := range inv.Params {
		if spec, ok := byName[name]; ok {
			resolved[name] = Coerce(raw, spec.Type)
		} else {
			resolved[name] = StringValue(raw)
		}
	}

	if inv.HasStdin {
		val := InterpretStdin(inv.Stdin)

		bound := false
		for _, spec := range specs {
			if _, taken := resolved[spec.Name]; taken {
				continue
			}
			if val.Matches(spec.Type) {
				resolved[spec.Name] = val
				bound = true
				break
			}
		}
		if !bound {
			for _, spec := range specs {
				if _, taken := resolved[spec.Name]; taken {
					continue
				}
				resolved[spec.Name] = coerceToward(val, spec.Type, inv.Stdin)
				break
			}
		}

		resolved[ReservedStdin] = StringValue(inv.Stdin)
		resolved[ReservedInput] = val
	}

	// Declared defaults for anything still unset.
	for _, spec := range specs {
		if _, taken := resolved[spec.Name]; taken {
			continue
		}
		if spec.Default == nil {
			continue
		}
		if v, ok := ValueOf(spec.Default); ok {
			resolved[spec.Name] = v
		}
	}

	return resolved
}

// coerceToward adapts a stdin-inferred value to a parameter of a different
// declared type: stringify for string targets, raw text as last resort.
func coerceToward(v Value, t ParamType, raw string) Value {
	switch {
	case v.Matches(t):
		return v
	case t == TypeString:
		return StringValue(v.Text())
	default:
		return StringValue(raw)
	}
}

// Validate checks the resolved set against the schema. All violations are
// collected rather than stopping at the first; ValidationError joins them.
// Only required parameters are enforced — an optional parameter left unset
// or loosely typed is the snippet's problem.
func Validate(specs []ParameterSpec, resolved ResolvedParameters) []string {
	var problems []string
	for _, spec := range specs {
		if spec.Name == ReservedStdin || spec.Name == ReservedInput {
			problems = append(problems, fmt.Sprintf("parameter name %q is reserved", spec.Name))
			continue
		}
		v, ok := resolved[spec.Name]
		if !ok {
			if spec.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter %q (%s)", spec.Name, spec.Type))
			}
			continue
		}
		if spec.Required && !v.Matches(spec.Type) {
			problems = append(problems, fmt.Sprintf("parameter %q must be %s, got %s", spec.Name, spec.Type, v.Kind))
		}
	}
	return problems
}

// ValidationError joins per-parameter violations into the single error
// string reported to the caller.
func ValidationError(problems []string) string {
	return "invalid parameters: " + strings.Join(problems, "; ")
}
