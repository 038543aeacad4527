package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"temper/internal/console"
)

// ErrTimeout is reported when the async race's timer elapses first.
var ErrTimeout = errors.New("execution timed out")

// stdlibWhitelist maps selector prefixes appearing in snippet source to the
// stdlib packages the assembled program may import. Packages granting
// filesystem, process or unsafe access (os, os/exec, syscall, unsafe) are
// deliberately absent.
var stdlibWhitelist = map[string]string{
	"strings": "strings",
	"strconv": "strconv",
	"fmt":     "fmt",
	"math":    "math",
	"rand":    "math/rand",
	"regexp":  "regexp",
	"json":    "encoding/json",
	"base64":  "encoding/base64",
	"hex":     "encoding/hex",
	"time":    "time",
	"sort":    "sort",
	"bytes":   "bytes",
	"unicode": "unicode",
	"utf8":    "unicode/utf8",
	"errors":  "errors",
	"http":    "net/http",
	"url":     "net/url",
	"io":      "io",
	"sync":    "sync",
}

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// consoleExports injects the swappable console surface into the
// interpreter, importable by snippets as "temper/console".
var consoleExports = interp.Exports{
	"temper/console/console": {
		"Log":   reflect.ValueOf(console.Log),
		"Info":  reflect.ValueOf(console.Info),
		"Warn":  reflect.ValueOf(console.Warn),
		"Error": reflect.ValueOf(console.Error),
		"Debug": reflect.ValueOf(console.Debug),
	},
}

// Sandbox assembles an executable unit from a transformed snippet body and
// resolved parameters, and dispatches it under the configured timeout.
type Sandbox struct {
	timeout time.Duration
}

// NewSandbox returns a sandbox with the given wall-clock budget for async
// dispatch. Synchronous dispatch is not interruptible.
func NewSandbox(timeout time.Duration) *Sandbox {
	return &Sandbox{timeout: timeout}
}

// Execute runs the unit. The returned error is ErrTimeout-wrapped for
// elapsed timers, the recovered failure for snippet panics, or the
// interpreter's message for programs that do not compile.
func (s *Sandbox) Execute(ctx context.Context, body string, params ResolvedParameters, async bool) (interface{}, error) {
	program, err := assembleProgram(body, params)
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}
	if err := i.Use(consoleExports); err != nil {
		return nil, fmt.Errorf("loading console symbols: %w", err)
	}

	if _, err := i.Eval(program); err != nil {
		return nil, err
	}
	v, err := i.Eval("main.run")
	if err != nil {
		return nil, err
	}
	fn, ok := v.Interface().(func() interface{})
	if !ok {
		return nil, fmt.Errorf("assembled unit has unexpected shape %T", v.Interface())
	}

	if !async {
		// Direct call on the invoking goroutine; a snippet that never
		// returns here is not interruptible.
		return safeCall(fn)
	}
	return s.race(ctx, fn)
}

type outcome struct {
	value interface{}
	err   error
}

// race dispatches fn on its own goroutine and waits for whichever finishes
// first: the call, the timer, or context cancellation. A losing computation
// is abandoned, not terminated; the buffered channel lets it settle late
// without blocking.
func (s *Sandbox) race(ctx context.Context, fn func() interface{}) (interface{}, error) {
	done := make(chan outcome, 1)
	go func() {
		v, err := safeCall(fn)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// safeCall invokes the unit and normalizes panics (including yaegi runtime
// errors) into returned errors.
func safeCall(fn func() interface{}) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	return fn(), nil
}

// assembleProgram concatenates a parameter-declaration prologue with the
// (possibly return-wrapped) body into one package main unit:
//
//	func run() interface{} { <prologue>; <body>; return nil }
//
// The trailing return satisfies the compiler for bodies without one.
func assembleProgram(body string, params ResolvedParameters) (string, error) {
	prologue, err := buildPrologue(params)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("package main\n\n")

	combined := prologue + "\n" + body
	if imports := neededImports(combined); len(imports) > 0 {
		b.WriteString("import (\n")
		for _, path := range imports {
			fmt.Fprintf(&b, "\t%q\n", path)
		}
		b.WriteString(")\n\n")
	}

	b.WriteString("func run() interface{} {\n")
	b.WriteString(prologue)
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("\t" + line + "\n")
	}
	b.WriteString("\treturn nil\n")
	b.WriteString("}\n")
	return b.String(), nil
}

// buildPrologue binds each resolved parameter to a Go literal, in name
// order. A value that cannot be embedded is a fatal construction failure;
// it must not be silently dropped.
func buildPrologue(params ResolvedParameters) (string, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if !identifier.MatchString(name) {
			return "", fmt.Errorf("parameter name %q is not a legal binding", name)
		}
		lit, err := goLiteral(params[name].Data)
		if err != nil {
			return "", fmt.Errorf("parameter %q: %w", name, err)
		}
		fmt.Fprintf(&b, "\t%s := %s\n\t_ = %s\n", name, lit, name)
	}
	return b.String(), nil
}

// goLiteral renders a resolved value as Go source. Integral numbers become
// int literals so snippets can index and loop with them; NaN and infinities
// go through math, which neededImports picks up from the emitted text.
func goLiteral(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		switch {
		case math.IsNaN(x):
			return "math.NaN()", nil
		case math.IsInf(x, 1):
			return "math.Inf(1)", nil
		case math.IsInf(x, -1):
			return "math.Inf(-1)", nil
		case x == math.Trunc(x) && math.Abs(x) < 1<<53:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		default:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
	case int:
		return strconv.Itoa(x), nil
	case []interface{}:
		parts := make([]string, len(x))
		for i, elem := range x {
			lit, err := goLiteral(elem)
			if err != nil {
				return "", err
			}
			parts[i] = lit
		}
		return "[]interface{}{" + strings.Join(parts, ", ") + "}", nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			lit, err := goLiteral(x[k])
			if err != nil {
				return "", err
			}
			parts[i] = strconv.Quote(k) + ": " + lit
		}
		return "map[string]interface{}{" + strings.Join(parts, ", ") + "}", nil
	default:
		return "", fmt.Errorf("cannot embed value of type %T", v)
	}
}

// neededImports scans the assembled source for whitelisted selector
// prefixes. Purely textual: a selector inside a string literal still pulls
// the import in, which yaegi tolerates.
func neededImports(src string) []string {
	var paths []string
	for base, path := range stdlibWhitelist {
		if strings.Contains(src, base+".") {
			paths = append(paths, path)
		}
	}
	if strings.Contains(src, "console.") {
		paths = append(paths, "temper/console")
	}
	sort.Strings(paths)
	return paths
}
