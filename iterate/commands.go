package iterate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// CommandResult records the outcome of one shell command. Exactly one of two
// shapes is produced: a launched command carries returncode/stdout/stderr,
// while a command that could not be launched at all carries only error.
type CommandResult struct {
	Command    string  `json:"command"`
	ReturnCode *int    `json:"returncode,omitempty"`
	Stdout     *string `json:"stdout,omitempty"`
	Stderr     *string `json:"stderr,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// CommandRunner executes a single shell command and reports its outcome.
// Failures are captured in the result, never returned, so one bad command
// cannot stop the ones after it.
type CommandRunner interface {
	RunOne(ctx context.Context, command string) CommandResult
}

// ShellRunner runs commands through the platform shell.
type ShellRunner struct {
	// Dir is the working directory for every command. Empty means the
	// process working directory.
	Dir string

	// Timeout bounds each command. Zero means no timeout; a hanging
	// command then hangs the run, which is the documented default.
	Timeout time.Duration
}

// NewShellRunner creates a ShellRunner rooted at dir.
func NewShellRunner(dir string) *ShellRunner {
	return &ShellRunner{Dir: dir}
}

// RunOne executes one command via the shell, capturing stdout, stderr, and
// the exit status. A failure to launch the shell at all is recorded in the
// Error field instead.
func (r *ShellRunner) RunOne(ctx context.Context, command string) CommandResult {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	shell := "/bin/bash"
	shellArg := "-c"
	if runtime.GOOS == "windows" {
		shell = "cmd.exe"
		shellArg = "/c"
	}

	cmd := exec.CommandContext(ctx, shell, shellArg, command)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The command never ran; this is the distinct failure channel.
			return CommandResult{Command: command, Error: err.Error()}
		}
		code = exitErr.ExitCode()
	}

	outStr := stdout.String()
	errStr := stderr.String()
	return CommandResult{
		Command:    command,
		ReturnCode: &code,
		Stdout:     &outStr,
		Stderr:     &errStr,
	}
}

// LogFileName returns the deterministic log file name for an iteration.
func LogFileName(iteration int) string {
	return fmt.Sprintf("command_output_iteration_%d.json", iteration)
}

// RunCommands executes commands in order through runner, never
// short-circuiting on individual failures, and writes the results as an
// indented JSON array to the iteration's log file under dir. It returns the
// log path relative to dir, which is how the file will be keyed in the next
// snapshot.
func RunCommands(ctx context.Context, runner CommandRunner, commands []string, iteration int, dir string) (string, error) {
	results := make([]CommandResult, 0, len(commands))
	for _, command := range commands {
		results = append(results, runner.RunOne(ctx, command))
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode command log: %w", err)
	}

	name := LogFileName(iteration)
	if err := os.WriteFile(filepath.Join(dir, name), encoded, 0644); err != nil {
		return "", fmt.Errorf("write command log: %w", err)
	}
	return name, nil
}
