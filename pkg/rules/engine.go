// Package rules evaluates stitch policy scripts. A policy script is a small
// Lisp program run in a sandboxed zygomys environment; its builtins adjust
// the width thresholds, the skipped colors and explicit per-color rules that
// decide between running, satin and fill stitches.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for policy evaluation. Each call
// runs in a fresh sandbox, so an Engine is safe for concurrent use.
type Engine struct {
	// Timeout bounds each evaluation; zero means DefaultTimeout.
	Timeout time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a policy script and returns the resulting Policy.
//
// Return semantics:
//   - On success: returns policy + nil errors + nil error
//   - On parse/eval failure: returns nil policy + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Policy, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine timeout.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Policy, []EvalError, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := evaluate(source)
		ch <- evalResult{policy: p, errors: evalErrs, err: err}
	}()

	return await(ctx, ch)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string) (*Policy, []EvalError, error) {
	p := DefaultPolicy()

	// Empty source keeps the defaults.
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode prevents scripts from touching the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if p.SatinThreshold > p.FillThreshold {
		return nil, []EvalError{{Message: fmt.Sprintf(
			"satin threshold %g mm exceeds fill threshold %g mm", p.SatinThreshold, p.FillThreshold)}}, nil
	}

	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
