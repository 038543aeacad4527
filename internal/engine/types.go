// Package engine turns a snippet definition, caller-supplied parameter
// values, and optional piped input into a single ExecutionResult.
//
// The pipeline is: Resolve (coercion + stdin inference + defaults) ->
// Validate -> Transform (shape analysis) -> Dispatch (yaegi sandbox, sync or
// async with a timeout race) -> Format. Every failure mode terminates in a
// normally-returned ExecutionResult; Execute never returns a Go error.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ExecutableLanguage is the only language tag the engine will dispatch.
// Snippets carrying any other tag can be stored and listed but refuse to run.
const ExecutableLanguage = "go"

// Reserved parameter names populated by the resolver when piped text is
// present. Schemas declaring these names are rejected.
const (
	ReservedStdin = "stdin"
	ReservedInput = "input"
)

// ParamType is a declared parameter type from a snippet schema.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// KnownType reports whether t is one of the five declared types.
func KnownType(t ParamType) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Kind tags a resolved Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

// Type maps a kind to its declared-type name.
func (k Kind) Type() ParamType {
	switch k {
	case KindNumber:
		return TypeNumber
	case KindBoolean:
		return TypeBoolean
	case KindArray:
		return TypeArray
	case KindObject:
		return TypeObject
	default:
		return TypeString
	}
}

func (k Kind) String() string { return string(k.Type()) }

// Value is a tagged parameter value. Coercion and inference are total: they
// always produce a Value and never fail, so validation is a separate pass.
type Value struct {
	Kind Kind
	Data interface{} // string, float64, bool, []interface{} or map[string]interface{}
}

func StringValue(s string) Value             { return Value{Kind: KindString, Data: s} }
func NumberValue(f float64) Value            { return Value{Kind: KindNumber, Data: f} }
func BoolValue(b bool) Value                 { return Value{Kind: KindBoolean, Data: b} }
func ArrayValue(a []interface{}) Value       { return Value{Kind: KindArray, Data: a} }
func ObjectValue(m map[string]interface{}) Value { return Value{Kind: KindObject, Data: m} }

// ValueOf tags a dynamically-typed value, as produced by encoding/json or
// yaml decoding. Returns false for values with no corresponding kind
// (notably nil, which the declared type system cannot express).
func ValueOf(v interface{}) (Value, bool) {
	switch x := v.(type) {
	case string:
		return StringValue(x), true
	case bool:
		return BoolValue(x), true
	case float64:
		return NumberValue(x), true
	case float32:
		return NumberValue(float64(x)), true
	case int:
		return NumberValue(float64(x)), true
	case int32:
		return NumberValue(float64(x)), true
	case int64:
		return NumberValue(float64(x)), true
	case uint64:
		return NumberValue(float64(x)), true
	case []interface{}:
		return ArrayValue(x), true
	case map[string]interface{}:
		return ObjectValue(x), true
	default:
		return Value{}, false
	}
}

// Matches reports whether the value satisfies the declared type. Arrays are
// distinguished from generic objects by kind, and NaN still matches number.
func (v Value) Matches(t ParamType) bool { return v.Kind.Type() == t }

// Text renders the value as plain text, used when coercing toward a string
// parameter and when formatting primitive return values.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Data.(string)
	case KindNumber:
		f := v.Data.(float64)
		if math.IsNaN(f) {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Data.(bool))
	default:
		return fmt.Sprintf("%v", v.Data)
	}
}

// ParameterSpec is one declared parameter of a snippet schema. Immutable
// after the snippet is loaded.
type ParameterSpec struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     interface{} // untyped as decoded; nil when absent
	Description string
}

// Snippet is the engine's read-only view of a snippet record.
type Snippet struct {
	Slug     string
	Language string
	Source   string
	Params   []ParameterSpec
}

// RawInvocation carries one call's inputs: explicit --name=value pairs and
// optional piped text (already trimmed by the caller).
type RawInvocation struct {
	Params   map[string]string
	Stdin    string
	HasStdin bool
}

// ResolvedParameters is the final typed parameter set for one execution,
// keyed by parameter name. Never mutated after validation.
type ResolvedParameters map[string]Value

// ExecutionResult is the sole value returned to the caller. Failures are
// normalized to a message; internal errors are never exposed directly.
type ExecutionResult struct {
	Success  bool
	Output   string
	Error    string
	Duration time.Duration // elapsed wall clock of the Dispatched phase
}

// Phase is one state of the invocation state machine. Phases execute in
// strict sequence within an invocation; there is no concurrency between
// them.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseValidating
	PhaseTransforming
	PhaseDispatched
	PhaseSucceeded
	PhaseFailed
	PhaseTimedOut
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseValidating:
		return "validating"
	case PhaseTransforming:
		return "transforming"
	case PhaseDispatched:
		return "dispatched"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	case PhaseTimedOut:
		return "timed_out"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
