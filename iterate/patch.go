package iterate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DiffApplier applies a unified diff to the working tree. An error leaves the
// tree in a state the model did not intend, so the controller treats it as
// fatal to the whole run.
type DiffApplier interface {
	Apply(ctx context.Context, diff string) error
}

// PatchApplier applies diffs by piping them to patch(1) with -p1 -u, the
// standard invocation for diffs generated against a repository root.
type PatchApplier struct {
	// Dir is the working tree root. Empty means the process working directory.
	Dir string
}

// NewPatchApplier creates a PatchApplier rooted at dir.
func NewPatchApplier(dir string) *PatchApplier {
	return &PatchApplier{Dir: dir}
}

// Apply runs the external patch tool on the given diff. An empty or
// whitespace-only diff is trivially a success and touches nothing. A non-zero
// exit returns an error carrying the tool's diagnostic output.
func (a *PatchApplier) Apply(ctx context.Context, diff string) error {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "patch", "-p1", "-u")
	cmd.Dir = a.Dir
	cmd.Stdin = strings.NewReader(diff)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = strings.TrimSpace(stdout.String())
		}
		if diag != "" {
			return fmt.Errorf("apply patch: %w: %s", err, diag)
		}
		return fmt.Errorf("apply patch: %w", err)
	}
	return nil
}
