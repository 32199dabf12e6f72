package main

import (
	"errors"
	"os"

	"github.com/astasoft/shgrate"
	"github.com/astasoft/shgrate/internal/common"
)

// Exit statuses: 0 success (including no-op runs), 2 configuration error,
// 3 script execution failure.
const (
	exitConfigError = 2
	exitExecFailure = 3
)

// exitCodeFor classifies a command failure. Script failures carry an
// ExecError somewhere in the chain; everything else stopped the run before
// or outside execution and counts as a configuration error.
func exitCodeFor(err error) int {
	var execErr *shgrate.ExecError
	if errors.As(err, &execErr) {
		return exitExecFailure
	}
	return exitConfigError
}

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct {
	logger *common.Logger
}

// NewDefaultExitHandler creates a new default exit handler
func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{
		logger: common.GetLogger().WithComponent("main"),
	}
}

// Exit terminates the program with the given exit code
func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs a fatal error and exits with the status class the error
// belongs to.
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	h.logger.Error(msg, allKeyvals...)
	h.Exit(exitCodeFor(err))
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = NewDefaultExitHandler()
