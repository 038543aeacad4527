package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts one raw flag string into a typed value for the declared
// type. It is total: every input produces a Value. Mismatches (a number
// declared as array, unparseable JSON, NaN from garbage numeric input) are
// deliberately let through here and caught by Validate.
func Coerce(raw string, t ParamType) Value {
	switch t {
	case TypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			// Still a number as far as the type system is concerned.
			f = math.NaN()
		}
		return NumberValue(f)

	case TypeBoolean:
		return BoolValue(raw == "true" || raw == "1")

	case TypeArray, TypeObject:
		var decoded interface{}
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			if v, ok := ValueOf(decoded); ok {
				return v
			}
		}
		// Parse failure: keep the raw string and let validation flag the
		// type mismatch.
		return StringValue(raw)

	default:
		return StringValue(raw)
	}
}
