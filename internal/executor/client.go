package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/util"
)

// Client shells out to an external database client binary, feeding the script
// on stdin. Normal output is discarded; stderr is captured for diagnostics and
// the exit status alone decides success or failure.
type Client struct {
	// Binary is the client executable; defaults to "mysql".
	Binary string
	// Database is the target database name, passed as the final argument.
	Database string
	// CredentialsFile, when set, is passed as --defaults-extra-file so the
	// client reads connection credentials from it.
	CredentialsFile string
	// StrictCredentials makes Validate fail when CredentialsFile is missing.
	StrictCredentials bool
}

// Validate checks preconditions before any side effect occurs.
func (c *Client) Validate() error {
	if _, ok := util.TrimEmptyCheck(c.Database); !ok {
		return fmt.Errorf("database name is required")
	}
	if c.StrictCredentials {
		path, ok := util.TrimEmptyCheck(c.CredentialsFile)
		if !ok {
			return fmt.Errorf("credentials file is required when strict checking is enabled")
		}
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("credentials file not readable: %s", path)
		}
	}
	return nil
}

// Apply runs the script through the client binary as one batch.
func (c *Client) Apply(ctx context.Context, script string) error {
	bin := util.TrimWithDefault(c.Binary, constants.DefaultClientBinary)

	args := make([]string, 0, 2)
	if creds, ok := util.TrimEmptyCheck(c.CredentialsFile); ok {
		// Must precede every other argument for mysql-family clients.
		args = append(args, "--defaults-extra-file="+creds)
	}
	if db, ok := util.TrimEmptyCheck(c.Database); ok {
		args = append(args, db)
	}

	logger := common.GetLogger().WithComponent("executor").WithDriver("client")
	logger.Debug("invoking database client", "binary", bin, "database", c.Database)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...) // #nosec G204 -- binary and database come from operator configuration
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		diag := stderr.String()
		if strings.TrimSpace(diag) == "" {
			diag = err.Error()
		}
		return &ExecError{ExitCode: exitCode, Diagnostic: diag}
	}
	return nil
}
