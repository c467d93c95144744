package iterate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommitMessage is used when the model proposes activity but leaves
// the commit message section empty.
const DefaultCommitMessage = "automated iteration"

// Repository stages and commits working-tree changes.
type Repository interface {
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
}

// GitRepo drives the git CLI in a working tree.
type GitRepo struct {
	// Dir is the repository root. Empty means the process working directory.
	Dir string
}

// NewGitRepo creates a GitRepo rooted at dir.
func NewGitRepo(dir string) *GitRepo {
	return &GitRepo{Dir: dir}
}

func (g *GitRepo) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return fmt.Errorf("git %s: %w: %s", args[0], err, diag)
		}
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

// StageAll stages every working-tree change.
func (g *GitRepo) StageAll(ctx context.Context) error {
	return g.run(ctx, "add", ".")
}

// Commit records a commit with the given message, falling back to
// DefaultCommitMessage when it is empty.
func (g *GitRepo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		message = DefaultCommitMessage
	}
	return g.run(ctx, "commit", "-m", message)
}
