// Package executor runs migration and rollback scripts against the target
// database. The engine never interprets why a script failed, only that it
// failed: every implementation reports failure as an ExecError carrying the
// diagnostic text, and success as nil.
package executor

import (
	"context"
	"fmt"
	"strings"
)

// Executor applies a script as a single batch against the target database.
type Executor interface {
	Apply(ctx context.Context, script string) error
}

// ExecError reports a failed script execution. Scripts are assumed to need
// human intervention on failure, so callers never retry.
type ExecError struct {
	// ExitCode is the database client's exit status; -1 when the failure came
	// from a native driver rather than a child process.
	ExitCode   int
	Diagnostic string
}

func (e *ExecError) Error() string {
	diag := strings.TrimSpace(e.Diagnostic)
	if diag == "" {
		diag = "no diagnostic output"
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("script execution failed (exit %d): %s", e.ExitCode, diag)
	}
	return fmt.Sprintf("script execution failed: %s", diag)
}
