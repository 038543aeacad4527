package engine

import (
	"encoding/json"
	"regexp"
	"strconv"
)

var numericLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// InterpretStdin classifies piped text into an inferred typed value.
// First match wins:
//  1. full JSON parse (array, object, number, boolean, quoted string)
//  2. numeric literal
//  3. exact "true"/"false"
//  4. plain string
//
// A piped "42" hits both 1 and 2 with the same answer; "[1,2]" is an array.
// JSON null has no kind in the declared type system and falls through to
// plain string.
func InterpretStdin(text string) Value {
	var decoded interface{}
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		if v, ok := ValueOf(decoded); ok {
			return v
		}
	}
	if numericLiteral.MatchString(text) {
		f, _ := strconv.ParseFloat(text, 64)
		return NumberValue(f)
	}
	if text == "true" || text == "false" {
		return BoolValue(text == "true")
	}
	return StringValue(text)
}
