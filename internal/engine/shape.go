package engine

import (
	"regexp"
	"strings"
)

// Analyzer classifies snippet source text. Both classifiers are syntactic
// heuristics over the raw text; the interface exists so a real parser could
// replace them without touching the sandbox.
type Analyzer interface {
	// NeedsAsync reports whether the snippet should be dispatched on the
	// asynchronous path with a timeout race.
	NeedsAsync(source string) bool

	// Transform rewrites single-expression snippets with an implicit
	// return; everything else passes through unchanged.
	Transform(source string) string
}

// asyncMarkers are patterns whose presence routes a snippet to async
// dispatch: blocking channel receives, spawned goroutines, network fetches
// and sleeps. Idioms outside this list are false negatives by design.
var asyncMarkers = []string{
	"<-",
	"go ",
	"http.Get(",
	"http.Post(",
	"http.Head(",
	"http.DefaultClient",
	"time.Sleep(",
	".Wait(",
}

// statementKeywords open constructs that cannot be wrapped in a return.
var statementKeywords = []string{
	"return", "if ", "for ", "for{", "switch ", "switch{", "select ",
	"select{", "var ", "const ", "type ", "func ", "func(", "go ", "defer ",
}

// plainAssign matches `x = y` but not `==`, `!=`, `<=`, `>=` or compound
// assignments. Wrapping an assignment in a return is not legal Go.
var plainAssign = regexp.MustCompile(`(^|[^=!<>&|^%*/+\-])=([^=]|$)`)

type heuristicAnalyzer struct{}

// NewHeuristicAnalyzer returns the pattern-matching Analyzer.
func NewHeuristicAnalyzer() Analyzer { return heuristicAnalyzer{} }

func (heuristicAnalyzer) NeedsAsync(source string) bool {
	for _, marker := range asyncMarkers {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

func (heuristicAnalyzer) Transform(source string) string {
	trimmed := strings.TrimSpace(source)
	if isOneLiner(trimmed) {
		return "return " + trimmed
	}
	return source
}

func isOneLiner(trimmed string) bool {
	if trimmed == "" || strings.Contains(trimmed, "\n") {
		return false
	}
	for _, kw := range statementKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return false
		}
	}
	if strings.Contains(trimmed, ":=") || plainAssign.MatchString(trimmed) {
		return false
	}
	return true
}
