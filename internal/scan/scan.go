// Package scan runs the external static-analysis collaborator that
// extracts component definitions and missing-capability diagnostics from
// program source. The collaborator is a subprocess that prints an
// analysis payload as JSON on stdout; seam never parses source itself.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/loomworks/seam/internal/catalog"
)

// Default and max timeout for scanner commands.
const (
	DefaultTimeout = 60 * time.Second
	MaxTimeout     = 600 * time.Second
)

// Runner executes a configured scanner command.
type Runner struct {
	// Command is the shell command to run, executed via "sh -c".
	Command string

	// Timeout bounds one scan; zero means DefaultTimeout, values above
	// MaxTimeout are clamped.
	Timeout time.Duration

	// Dir is the working directory for the scanner (usually the project
	// root). Empty means the current directory.
	Dir string

	// Env holds extra environment variables overlaid on the inherited
	// process environment.
	Env map[string]string
}

// Run executes the scanner and decodes the payload it prints. Cancelling
// ctx kills the subprocess and discards partial output; the engine holds
// no state a partial run could corrupt.
func (r *Runner) Run(ctx context.Context) (*catalog.Payload, error) {
	if strings.TrimSpace(r.Command) == "" {
		return nil, fmt.Errorf("scanner command is empty")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(scanCtx, "sh", "-c", r.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Dir != "" {
		if info, err := os.Stat(r.Dir); err == nil && info.IsDir() {
			cmd.Dir = r.Dir
		}
	}

	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := scanCtx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scanner: %w", ctxErr)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("scanner: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("scanner: %w", err)
	}

	payload, err := catalog.DecodePayload(&stdout)
	if err != nil {
		return nil, fmt.Errorf("scanner output: %w", err)
	}
	return payload, nil
}
