package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/m4xw311/picode/config"
	"github.com/m4xw311/picode/errors"
	"github.com/m4xw311/picode/logging"
)

const (
	// MaxCommandOutputChars caps the output run_command returns.
	MaxCommandOutputChars = 10_000
	drainGrace            = 5 * time.Second
)

type commandArgs struct {
	Command string `json:"command" jsonschema:"description=The shell command to execute"`
}

// RunCommandTool runs a command through sh -c and returns combined
// stdout/stderr. A command still running after Timeout is killed together with
// its process group and whatever it printed so far is returned.
type RunCommandTool struct {
	AllowedCommands []string
	Timeout         time.Duration
	logger          *slog.Logger
}

func (t *RunCommandTool) Name() string { return "run_command" }
func (t *RunCommandTool) Description() string {
	desc := "Run a shell command and return its output. Use for compilation, testing, or inspecting the system."
	if len(t.AllowedCommands) == 0 {
		return desc
	}
	var b strings.Builder
	b.WriteString(desc)
	b.WriteString("\nAllowed command patterns:\n")
	for _, cmd := range t.AllowedCommands {
		fmt.Fprintf(&b, "- %s\n", cmd)
	}
	return b.String()
}
func (t *RunCommandTool) Parameters() map[string]any { return schemaFor(&commandArgs{}) }

// lockedBuffer is written by the drain goroutine and read on timeout.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (t *RunCommandTool) Execute(ctx context.Context, raw string) (string, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return "", err
	}
	command, err := stringArg(args, "command")
	if err != nil {
		return "", err
	}
	logger := logging.OrDefault(t.logger)
	if !isCommandAllowed(command, t.AllowedCommands, logger) {
		return "", errors.New("command '%s' is not in the list of allowed commands", command)
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = config.DefaultCommandTimeout
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Sprintf("Error running command: %v", err), nil
	}
	defer pr.Close()

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = pw
	cmd.Stderr = pw
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Sprintf("Error running command: %v", err), nil
	}
	// Only the child holds the write end now, so the reader sees EOF on exit.
	pw.Close()

	var out lockedBuffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		if _, err := io.Copy(&out, pr); err != nil {
			logger.Debug("command output drain ended", "error", err)
		}
	}()

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-exited:
	case <-timer.C:
		return t.abort(cmd, exited, &out, fmt.Sprintf("(timed out after %s)", timeout), logger), nil
	case <-ctx.Done():
		return t.abort(cmd, exited, &out, "(cancelled)", logger), nil
	}

	select {
	case <-drained:
	case <-time.After(drainGrace):
		logger.Warn("command output still open after exit", "command", command)
	}
	return formatCommandOutput(out.String(), cmd.ProcessState.ExitCode()), nil
}

func (t *RunCommandTool) abort(cmd *exec.Cmd, exited <-chan error, out *lockedBuffer, marker string, logger *slog.Logger) string {
	partial := out.String()
	if err := killProcessGroup(cmd); err != nil {
		logger.Warn("could not kill command", "pid", cmd.Process.Pid, "error", err)
	}
	select {
	case <-exited:
	case <-time.After(drainGrace):
		logger.Warn("command did not exit after kill", "pid", cmd.Process.Pid)
	}
	partial, _, _ = truncateRunes(partial, MaxCommandOutputChars)
	return partial + "\n" + marker
}

func formatCommandOutput(output string, exitCode int) string {
	if output == "" {
		return fmt.Sprintf("(no output, exit code %d)", exitCode)
	}
	if text, _, truncated := truncateRunes(output, MaxCommandOutputChars); truncated {
		output = text + "\n... (truncated)"
	}
	return fmt.Sprintf("%s\n(exit code %d)", output, exitCode)
}
