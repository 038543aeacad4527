// Package console is the process-wide logging surface exposed to snippet
// code. Its five channels (plain log, info, warn, error, debug) are
// swappable function bindings: during snippet dispatch the engine redirects
// them into a capture buffer and restores the originals afterward.
package console

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

type writer func(line string)

type bindings struct {
	log, info, warn, err, debug writer
}

var (
	mu       sync.Mutex
	channels = defaultBindings()
)

func defaultBindings() bindings {
	return bindings{
		log:   func(s string) { fmt.Fprintln(os.Stdout, s) },
		info:  func(s string) { fmt.Fprintln(os.Stderr, "[info] "+s) },
		warn:  func(s string) { fmt.Fprintln(os.Stderr, "[warn] "+s) },
		err:   func(s string) { fmt.Fprintln(os.Stderr, "[error] "+s) },
		debug: func(s string) { fmt.Fprintln(os.Stderr, "[debug] "+s) },
	}
}

// sprint joins operands with spaces, console.log style.
func sprint(args ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

func emit(pick func(bindings) writer, args []interface{}) {
	mu.Lock()
	w := pick(channels)
	mu.Unlock()
	w(sprint(args...))
}

// Log writes to the plain channel.
func Log(args ...interface{}) { emit(func(b bindings) writer { return b.log }, args) }

// Info writes to the info channel.
func Info(args ...interface{}) { emit(func(b bindings) writer { return b.info }, args) }

// Warn writes to the warn channel.
func Warn(args ...interface{}) { emit(func(b bindings) writer { return b.warn }, args) }

// Error writes to the error channel.
func Error(args ...interface{}) { emit(func(b bindings) writer { return b.err }, args) }

// Debug writes to the debug channel.
func Debug(args ...interface{}) { emit(func(b bindings) writer { return b.debug }, args) }

// Redirect swaps all five channels to append formatted lines (non-plain
// channels prefixed with their bracketed name) into sink, and returns a
// restore function that reinstates the previous bindings. Callers must
// invoke restore on every exit path, via defer.
func Redirect(sink func(line string)) (restore func()) {
	mu.Lock()
	prev := channels
	channels = bindings{
		log:   func(s string) { sink(s) },
		info:  func(s string) { sink("[info] " + s) },
		warn:  func(s string) { sink("[warn] " + s) },
		err:   func(s string) { sink("[error] " + s) },
		debug: func(s string) { sink("[debug] " + s) },
	}
	mu.Unlock()
	return func() {
		mu.Lock()
		channels = prev
		mu.Unlock()
	}
}
