package iterate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestShellRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test assumes a POSIX shell")
	}
	runner := NewShellRunner(t.TempDir())

	result := runner.RunOne(context.Background(), "echo hi")
	if result.Error != "" {
		t.Fatalf("unexpected launch error: %s", result.Error)
	}
	if result.ReturnCode == nil || *result.ReturnCode != 0 {
		t.Errorf("returncode = %v, want 0", result.ReturnCode)
	}
	if result.Stdout == nil || *result.Stdout != "hi\n" {
		t.Errorf("stdout = %v, want %q", result.Stdout, "hi\n")
	}
	if result.Stderr == nil || *result.Stderr != "" {
		t.Errorf("stderr = %v, want empty", result.Stderr)
	}
}

func TestShellRunnerNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test assumes a POSIX shell")
	}
	runner := NewShellRunner(t.TempDir())

	result := runner.RunOne(context.Background(), "false")
	if result.Error != "" {
		t.Fatalf("a non-zero exit is not a launch failure: %s", result.Error)
	}
	if result.ReturnCode == nil || *result.ReturnCode != 1 {
		t.Errorf("returncode = %v, want 1", result.ReturnCode)
	}
}

func TestShellRunnerLaunchFailure(t *testing.T) {
	runner := NewShellRunner(filepath.Join(t.TempDir(), "does-not-exist"))

	result := runner.RunOne(context.Background(), "echo hi")
	if result.Error == "" {
		t.Fatal("expected a launch error for a nonexistent working directory")
	}
	if result.ReturnCode != nil || result.Stdout != nil || result.Stderr != nil {
		t.Error("launch failures must populate only the error field")
	}
}

func TestRunCommandsOrderAndNoShortCircuit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test assumes a POSIX shell")
	}
	dir := t.TempDir()
	runner := NewShellRunner(dir)

	logPath, err := RunCommands(context.Background(), runner, []string{"false", "echo ok"}, 3, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logPath != "command_output_iteration_3.json" {
		t.Errorf("log path = %q", logPath)
	}

	data, err := os.ReadFile(filepath.Join(dir, logPath))
	if err != nil {
		t.Fatal(err)
	}
	var results []CommandResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("log is not a JSON array: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(results))
	}

	if results[0].Command != "false" || results[0].ReturnCode == nil || *results[0].ReturnCode != 1 {
		t.Errorf("entry 0 = %+v, want false with returncode 1", results[0])
	}
	if results[1].Command != "echo ok" || results[1].ReturnCode == nil || *results[1].ReturnCode != 0 {
		t.Errorf("entry 1 = %+v, want echo ok with returncode 0", results[1])
	}
	if results[1].Stdout == nil || *results[1].Stdout != "ok\n" {
		t.Errorf("entry 1 stdout = %v, want %q", results[1].Stdout, "ok\n")
	}
}

// scriptedRunner records commands and fails to launch some of them.
type scriptedRunner struct {
	ran      []string
	failures map[string]string
}

func (r *scriptedRunner) RunOne(_ context.Context, command string) CommandResult {
	r.ran = append(r.ran, command)
	if msg, ok := r.failures[command]; ok {
		return CommandResult{Command: command, Error: msg}
	}
	code := 0
	out, errOut := "", ""
	return CommandResult{Command: command, ReturnCode: &code, Stdout: &out, Stderr: &errOut}
}

func TestRunCommandsContinuesAfterLaunchFailure(t *testing.T) {
	dir := t.TempDir()
	runner := &scriptedRunner{failures: map[string]string{"bad": "exec: not found"}}

	logPath, err := RunCommands(context.Background(), runner, []string{"bad", "good"}, 1, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.ran) != 2 || runner.ran[0] != "bad" || runner.ran[1] != "good" {
		t.Errorf("ran = %v, want [bad good]", runner.ran)
	}

	data, err := os.ReadFile(filepath.Join(dir, logPath))
	if err != nil {
		t.Fatal(err)
	}
	var results []CommandResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatal(err)
	}
	if results[0].Error != "exec: not found" {
		t.Errorf("entry 0 error = %q", results[0].Error)
	}
	if results[1].Error != "" || results[1].ReturnCode == nil {
		t.Errorf("entry 1 should have run normally: %+v", results[1])
	}
}

func TestCommandResultJSONShape(t *testing.T) {
	code := 0
	out, errOut := "hi\n", ""
	launched := CommandResult{Command: "echo hi", ReturnCode: &code, Stdout: &out, Stderr: &errOut}
	data, err := json.Marshal(launched)
	if err != nil {
		t.Fatal(err)
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"command", "returncode", "stdout", "stderr"} {
		if _, ok := asMap[key]; !ok {
			t.Errorf("launched result missing %q: %s", key, data)
		}
	}
	if _, ok := asMap["error"]; ok {
		t.Errorf("launched result should omit error: %s", data)
	}

	failed := CommandResult{Command: "nope", Error: "cannot launch"}
	data, err = json.Marshal(failed)
	if err != nil {
		t.Fatal(err)
	}
	asMap = nil
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"returncode", "stdout", "stderr"} {
		if _, ok := asMap[key]; ok {
			t.Errorf("launch failure should omit %q: %s", key, data)
		}
	}
	if asMap["error"] != "cannot launch" {
		t.Errorf("error field = %v", asMap["error"])
	}
}
