package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"temper/internal/config"
	"temper/internal/engine"
	"temper/internal/snippet"
)

// runCmd executes a snippet. Flag parsing is disabled so arbitrary
// --name=value parameter pairs pass through to the resolver untouched.
var runCmd = &cobra.Command{
	Use:   "run <slug> [--name=value ...]",
	Short: "Execute a snippet with parameters and optional piped stdin",
	Long: `Executes a local snippet. Parameters come from --name=value flags,
piped stdin, and declared defaults, in that order of precedence.

Examples:
  temper run upper --str=hello
  echo '[3,1,4]' | temper run sort-numbers
  cat data.json | temper run summarize --json`,
	DisableFlagParsing: true,
	RunE:               runSnippet,
}

// runInvocation is the parsed command line of one run.
type runInvocation struct {
	slug      string
	params    map[string]string
	jsonOut   bool
	timeoutMS int
}

func parseRunArgs(args []string) (*runInvocation, error) {
	inv := &runInvocation{params: make(map[string]string)}
	for _, arg := range args {
		switch {
		case arg == "--help" || arg == "-h":
			return nil, nil
		case arg == "--json":
			inv.jsonOut = true
		case strings.HasPrefix(arg, "--timeout="):
			ms, err := strconv.Atoi(strings.TrimPrefix(arg, "--timeout="))
			if err != nil || ms <= 0 {
				return nil, fmt.Errorf("invalid --timeout value %q", arg)
			}
			inv.timeoutMS = ms
		case strings.HasPrefix(arg, "--"):
			name, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
			if !ok {
				return nil, fmt.Errorf("parameter flag %q must use --name=value form", arg)
			}
			inv.params[name] = value
		case inv.slug == "":
			inv.slug = arg
		default:
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
	}
	if inv.slug == "" {
		return nil, errors.New("usage: temper run <slug> [--name=value ...]")
	}
	return inv, nil
}

func runSnippet(cmd *cobra.Command, args []string) error {
	inv, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if inv == nil {
		return cmd.Help()
	}

	store, err := snippet.NewStore(config.SnippetsDir(home))
	if err != nil {
		return err
	}
	sn, err := store.Load(inv.slug)
	if err != nil {
		if errors.Is(err, snippet.ErrNotFound) {
			return fmt.Errorf("snippet %q not found locally; try `temper get %s`", inv.slug, inv.slug)
		}
		return err
	}

	raw := engine.RawInvocation{Params: inv.params}
	if piped, text := readPipedStdin(); piped {
		raw.HasStdin = true
		raw.Stdin = text
	}

	timeout := cfg.Execution.Timeout()
	if inv.timeoutMS > 0 {
		timeout = time.Duration(inv.timeoutMS) * time.Millisecond
	}
	eng := engine.New(engine.Config{
		Timeout:   timeout,
		MaxOutput: cfg.Execution.MaxOutputChars,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Debug("executing snippet",
		zap.String("slug", sn.Slug), zap.Duration("timeout", timeout))
	result := eng.Execute(ctx, sn.Engine(), raw)

	if inv.jsonOut {
		return renderJSON(result)
	}
	if !result.Success {
		if result.Output != "" {
			fmt.Println(result.Output)
		}
		return errors.New(result.Error)
	}
	fmt.Println(result.Output)
	return nil
}

// readPipedStdin detects a pipe on stdin and returns its trimmed content.
func readPipedStdin() (bool, string) {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return false, ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return false, ""
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return false, ""
	}
	return true, text
}

func renderJSON(result engine.ExecutionResult) error {
	line, err := json.Marshal(map[string]interface{}{
		"success":     result.Success,
		"output":      result.Output,
		"error":       result.Error,
		"duration_ms": result.Duration.Milliseconds(),
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	if !result.Success {
		// Machine-readable output already carries the message; keep the
		// failing exit code without printing it twice.
		os.Exit(1)
	}
	return nil
}
