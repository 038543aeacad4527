package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"temper/internal/console"
)

func goSnippet(source string, params ...ParameterSpec) Snippet {
	return Snippet{
		Slug:     "test-snippet",
		Language: ExecutableLanguage,
		Params:   params,
		Source:   source,
	}
}

func TestExecuteOneLiner(t *testing.T) {
	e := New(Config{})
	result := e.Execute(context.Background(),
		goSnippet("strings.ToUpper(str)", ParameterSpec{Name: "str", Type: TypeString, Required: true}),
		RawInvocation{Params: map[string]string{"str": "abc"}},
	)

	if !result.Success {
		t.Fatalf("failed: %s", result.Error)
	}
	if result.Output != "ABC" {
		t.Errorf("output = %q, want ABC", result.Output)
	}
	if result.Duration <= 0 {
		t.Error("duration not recorded")
	}
}

func TestExecutePipedStdin(t *testing.T) {
	e := New(Config{})
	result := e.Execute(context.Background(),
		goSnippet(
			"sum := 0\nfor _, v := range xs {\n\tsum += v.(int)\n}\nreturn sum",
			ParameterSpec{Name: "xs", Type: TypeArray, Required: true},
		),
		RawInvocation{HasStdin: true, Stdin: "[3,1,4]"},
	)

	if !result.Success {
		t.Fatalf("failed: %s", result.Error)
	}
	if result.Output != "8" {
		t.Errorf("output = %q, want 8", result.Output)
	}
}

func TestExecuteValidationShortCircuits(t *testing.T) {
	e := New(Config{})
	result := e.Execute(context.Background(),
		goSnippet("strings.ToUpper(str)", ParameterSpec{Name: "str", Type: TypeString, Required: true}),
		RawInvocation{},
	)

	if result.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(result.Error, "invalid parameters") || !strings.Contains(result.Error, `"str"`) {
		t.Errorf("error = %q", result.Error)
	}
	if result.Output != "" {
		t.Errorf("nothing should run before validation passes, output = %q", result.Output)
	}
}

func TestExecuteRejectsNonExecutableLanguage(t *testing.T) {
	e := New(Config{})
	sn := goSnippet("print('hi')")
	sn.Language = "python"

	result := e.Execute(context.Background(), sn, RawInvocation{})
	if result.Success || !strings.Contains(result.Error, "python") {
		t.Errorf("got %+v", result)
	}
}

func TestExecuteCapturesConsoleBeforeReturn(t *testing.T) {
	e := New(Config{})
	result := e.Execute(context.Background(),
		goSnippet("console.Log(\"working on\", str)\nreturn strings.ToUpper(str)",
			ParameterSpec{Name: "str", Type: TypeString, Required: true}),
		RawInvocation{Params: map[string]string{"str": "abc"}},
	)

	if !result.Success {
		t.Fatalf("failed: %s", result.Error)
	}
	want := "working on abc\nABC"
	if result.Output != want {
		t.Errorf("output = %q, want %q", result.Output, want)
	}
}

func TestExecuteKeepsCaptureOnFailure(t *testing.T) {
	e := New(Config{})
	result := e.Execute(context.Background(),
		goSnippet("console.Log(\"step 1\")\npanic(\"kaboom\")"),
		RawInvocation{},
	)

	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "kaboom") {
		t.Errorf("error = %q", result.Error)
	}
	if result.Output != "step 1" {
		t.Errorf("diagnostics before the failure must survive, output = %q", result.Output)
	}
}

func TestExecuteRestoresConsoleAcrossInvocations(t *testing.T) {
	var (
		mu    sync.Mutex
		leaks []string
	)
	restore := console.Redirect(func(line string) {
		mu.Lock()
		leaks = append(leaks, line)
		mu.Unlock()
	})
	defer restore()

	e := New(Config{})
	sn := goSnippet("console.Log(\"inside\")\nreturn 1")
	for i := 0; i < 2; i++ {
		result := e.Execute(context.Background(), sn, RawInvocation{})
		if !result.Success {
			t.Fatalf("run %d failed: %s", i, result.Error)
		}
		if result.Output != "inside\n1" {
			t.Errorf("run %d output = %q", i, result.Output)
		}
	}

	// Both invocations captured their own lines; nothing escaped to the
	// surrounding surface, which still works after restore.
	mu.Lock()
	escaped := len(leaks)
	mu.Unlock()
	if escaped != 0 {
		t.Errorf("%d line(s) escaped the capture: %v", escaped, leaks)
	}

	console.Log("after")
	mu.Lock()
	defer mu.Unlock()
	if len(leaks) != 1 || leaks[0] != "after" {
		t.Errorf("surrounding surface broken after restore: %v", leaks)
	}
}

func TestExecuteTruncatesToCap(t *testing.T) {
	e := New(Config{MaxOutput: 10})
	result := e.Execute(context.Background(),
		goSnippet(`strings.Repeat("x", 50)`),
		RawInvocation{},
	)

	if !result.Success {
		t.Fatalf("failed: %s", result.Error)
	}
	if len(result.Output) != 10 {
		t.Errorf("output length = %d, want exactly 10", len(result.Output))
	}
}

func TestExecuteTimeoutIsBounded(t *testing.T) {
	e := New(Config{Timeout: 50 * time.Millisecond})
	result := e.Execute(context.Background(),
		goSnippet("time.Sleep(300 * time.Millisecond)\nreturn 1"),
		RawInvocation{},
	)

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(result.Error, "timed out") {
		t.Errorf("error = %q", result.Error)
	}
	if result.Duration > 250*time.Millisecond {
		t.Errorf("returned after %v, want close to the 50ms budget", result.Duration)
	}
	// Let the abandoned computation settle before the test exits.
	time.Sleep(350 * time.Millisecond)
}
