package iterate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martinemde/reforge/llm"
)

// Completer is the narrow interface for the blocking model call.
// *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// LoopDeps are the external collaborators of a Loop. Completer is required;
// the rest default to the real implementations rooted at the configured
// working directory.
type LoopDeps struct {
	Completer Completer
	Applier   DiffApplier
	Runner    CommandRunner
	Repo      Repository
}

// Loop drives the iteration protocol: snapshot, prompt, model call, parse,
// patch, commands, commit, up to MaxIterations rounds or until the model
// proposes nothing.
type Loop struct {
	runID     string
	completer Completer
	applier   DiffApplier
	runner    CommandRunner
	repo      Repository
	config    Config
	emitter   *EventEmitter
}

// NewLoop creates a Loop with the given collaborators and optional
// configuration. A nil config uses DefaultConfig.
func NewLoop(deps LoopDeps, config *Config) *Loop {
	runID := uuid.New().String()

	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 1
	}

	l := &Loop{
		runID:     runID,
		completer: deps.Completer,
		applier:   deps.Applier,
		runner:    deps.Runner,
		repo:      deps.Repo,
		config:    cfg,
		emitter:   NewEventEmitter(runID, 256),
	}

	if l.applier == nil {
		l.applier = NewPatchApplier(cfg.WorkDir)
	}
	if l.runner == nil {
		runner := NewShellRunner(cfg.WorkDir)
		runner.Timeout = time.Duration(cfg.CommandTimeoutMs) * time.Millisecond
		l.runner = runner
	}
	if l.repo == nil {
		l.repo = NewGitRepo(cfg.WorkDir)
	}

	return l
}

// ID returns the run identifier.
func (l *Loop) ID() string { return l.runID }

// Events returns the event channel for the host application.
func (l *Loop) Events() <-chan LoopEvent {
	return l.emitter.Events()
}

// Close closes the event stream. Safe to call after Run returns.
func (l *Loop) Close() {
	l.emitter.Close()
}

// Run executes up to MaxIterations rounds. It returns nil on a normal stop
// (the model proposed nothing, or the rounds are exhausted) and an error on
// a fatal failure: a model call that cannot be retried, or a rejected patch.
// A rejected patch never commits; the caller should exit non-zero.
func (l *Loop) Run(ctx context.Context) error {
	root := l.config.WorkDir
	if root == "" {
		root = "."
	}

	l.emitter.Emit(EventRunStart, map[string]interface{}{
		"max_iterations": l.config.MaxIterations,
		"model":          l.config.Model,
	})

	for iteration := 1; iteration <= l.config.MaxIterations; iteration++ {
		select {
		case <-ctx.Done():
			l.emitter.Emit(EventError, map[string]interface{}{
				"error": "context cancelled",
			})
			return ctx.Err()
		default:
		}

		l.emitter.SetIteration(iteration)
		l.emitter.Emit(EventIterationStart, map[string]interface{}{
			"iteration":      iteration,
			"max_iterations": l.config.MaxIterations,
		})

		// GATHER: the snapshot is rebuilt from disk every round. Prior
		// rounds' command logs show up here because they were written to
		// the tree, not because anything is carried in memory.
		files, err := Snapshot(root, l.config.Exclude)
		if err != nil {
			l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("snapshot: %w", err)
		}
		l.emitter.Emit(EventSnapshotTaken, map[string]interface{}{
			"file_count": len(files),
		})

		// PROMPT + INFER.
		systemPrompt, userPrompt, err := ComposePrompt(files)
		if err != nil {
			l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			return err
		}

		response, err := l.completer.Complete(ctx, llm.Request{
			Model:    l.config.Model,
			Provider: l.config.Provider,
			Messages: []llm.Message{
				llm.SystemMessage(systemPrompt),
				llm.UserMessage(userPrompt),
			},
		})
		if err != nil {
			l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			return fmt.Errorf("model call: %w", err)
		}

		// PARSE: never fails; malformed output reads as "no change".
		proposal := ParseResponse(response.Text)
		l.emitter.Emit(EventModelResponse, map[string]interface{}{
			"commit_message": proposal.CommitMessage,
			"diff_bytes":     len(proposal.Diff),
			"command_count":  len(proposal.Commands),
		})

		// STOP: no diff and no commands ends the whole run, not just the round.
		if proposal.Empty() {
			l.emitter.Emit(EventNoProposal, nil)
			break
		}

		// APPLY: a rejected patch is fatal. Committing on top of a
		// half-applied tree would compound the corruption.
		if proposal.Diff != "" {
			if err := l.applier.Apply(ctx, proposal.Diff); err != nil {
				l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
				return err
			}
			l.emitter.Emit(EventPatchApplied, map[string]interface{}{
				"diff_bytes": len(proposal.Diff),
			})
		}

		// RUN: individual command failures are recorded in the log, never
		// escalated. Only a failure to persist the log is fatal.
		if len(proposal.Commands) > 0 {
			logPath, err := RunCommands(ctx, l.runner, proposal.Commands, iteration, root)
			if err != nil {
				l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
				return err
			}
			l.emitter.Emit(EventCommandsRun, map[string]interface{}{
				"log":           logPath,
				"command_count": len(proposal.Commands),
			})
		}

		// COMMIT: either a diff or commands were present, so record the
		// round. Git failures (e.g. nothing to commit after a command-only
		// round) are surfaced as events but do not stop the run.
		message := strings.TrimSpace(proposal.CommitMessage)
		if message == "" {
			message = DefaultCommitMessage
		}
		if err := l.commit(ctx, message); err != nil {
			l.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
		} else {
			l.emitter.Emit(EventCommitted, map[string]interface{}{
				"message": message,
			})
		}
	}

	l.emitter.Emit(EventRunEnd, nil)
	return nil
}

func (l *Loop) commit(ctx context.Context, message string) error {
	if err := l.repo.StageAll(ctx); err != nil {
		return err
	}
	return l.repo.Commit(ctx, message)
}
