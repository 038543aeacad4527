package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"temper/internal/console"
	"temper/internal/logging"
)

// Config carries the engine's two process-wide knobs, read-only for its
// lifetime.
type Config struct {
	Timeout   time.Duration // wall-clock budget for async dispatch
	MaxOutput int           // output cap in characters; truncation, not error
}

const (
	DefaultTimeout   = 5 * time.Second
	DefaultMaxOutput = 10000
)

// Engine executes snippets. Safe for sequential reuse; one invocation runs
// at a time.
type Engine struct {
	cfg      Config
	analyzer Analyzer
	sandbox  *Sandbox
}

// New builds an engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxOutput <= 0 {
		cfg.MaxOutput = DefaultMaxOutput
	}
	return &Engine{
		cfg:      cfg,
		analyzer: NewHeuristicAnalyzer(),
		sandbox:  NewSandbox(cfg.Timeout),
	}
}

// Execute runs one invocation through the phase sequence and always returns
// a normally-formed ExecutionResult; it never panics out or returns a Go
// error. The console surface is captured for the duration of the Dispatched
// phase and restored on every exit path.
func (e *Engine) Execute(ctx context.Context, sn Snippet, inv RawInvocation) ExecutionResult {
	id := uuid.NewString()[:8]
	logging.Engine("[%s] snippet=%s phase=%s", id, sn.Slug, PhaseResolving)

	if sn.Language != ExecutableLanguage {
		return ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("snippet %q has language %q; only %q snippets are executable", sn.Slug, sn.Language, ExecutableLanguage),
		}
	}

	resolved := Resolve(sn.Params, inv)

	logging.Engine("[%s] phase=%s", id, PhaseValidating)
	if problems := Validate(sn.Params, resolved); len(problems) > 0 {
		logging.EngineWarn("[%s] validation failed: %d problem(s)", id, len(problems))
		return ExecutionResult{Success: false, Error: ValidationError(problems)}
	}

	logging.Engine("[%s] phase=%s", id, PhaseTransforming)
	body := e.analyzer.Transform(sn.Source)
	async := e.analyzer.NeedsAsync(sn.Source)

	logging.Engine("[%s] phase=%s async=%v", id, PhaseDispatched, async)

	var (
		capMu    sync.Mutex
		captured []string
	)
	sink := func(line string) {
		capMu.Lock()
		captured = append(captured, line)
		capMu.Unlock()
	}

	start := time.Now()
	value, runErr := func() (interface{}, error) {
		restore := console.Redirect(sink)
		defer restore()
		return e.sandbox.Execute(ctx, body, resolved, async)
	}()
	duration := time.Since(start)

	// Snapshot under the lock; an abandoned async computation may still be
	// running, and its late writes go to the restored surface, not here.
	capMu.Lock()
	lines := make([]string, len(captured))
	copy(lines, captured)
	capMu.Unlock()

	if runErr != nil {
		terminal := PhaseFailed
		if isTimeout(runErr) {
			terminal = PhaseTimedOut
		}
		logging.Engine("[%s] phase=%s duration=%v", id, terminal, duration)
		return ExecutionResult{
			Success:  false,
			Output:   FormatFailure(lines, e.cfg.MaxOutput),
			Error:    runErr.Error(),
			Duration: duration,
		}
	}

	logging.Engine("[%s] phase=%s duration=%v", id, PhaseSucceeded, duration)
	return ExecutionResult{
		Success:  true,
		Output:   FormatSuccess(lines, value, e.cfg.MaxOutput),
		Duration: duration,
	}
}

func isTimeout(err error) bool { return errors.Is(err, ErrTimeout) }
