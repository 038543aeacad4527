package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// FormatSuccess merges captured diagnostic lines with the serialized return
// value (blank entries dropped) and truncates to the output cap.
func FormatSuccess(captured []string, ret interface{}, maxChars int) string {
	return joinBounded(append(captured, serializeReturn(ret)), maxChars)
}

// FormatFailure keeps only the diagnostic lines captured before the
// failure; no return value was produced.
func FormatFailure(captured []string, maxChars int) string {
	return joinBounded(captured, maxChars)
}

func joinBounded(parts []string, maxChars int) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p
	}
	return Truncate(out, maxChars)
}

// Truncate bounds s to maxChars characters. Truncation is silent; it is not
// an error.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// serializeReturn renders a snippet's return value: composites as indented
// JSON, error values as "<name>: <message>", primitives in their natural
// text form, nil as the empty string.
func serializeReturn(v interface{}) string {
	if v == nil {
		return ""
	}
	if err, ok := v.(error); ok {
		return errorName(err) + ": " + err.Error()
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	}
	if data, err := json.MarshalIndent(v, "", "  "); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}

// errorName extracts a short type name for an error value, standing in for
// the name an exception would carry.
func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" || t.Name() == "errorString" {
		return "error"
	}
	return t.Name()
}
