// Package iterate implements the autonomous project iteration loop.
//
// Each round the loop snapshots the working tree, sends it to a language
// model, parses the model's proposal (commit message, unified diff, shell
// commands), applies the diff, runs the commands, records their output to a
// per-iteration log file, and commits the result. The log file is an ordinary
// project file, so the next round's snapshot carries it back to the model:
// state flows forward across iterations through the filesystem, never through
// in-memory carry-over.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Loop: The controller driving one round through
//     GATHER -> PROMPT -> INFER -> PARSE -> APPLY -> RUN -> COMMIT | STOP.
//   - Completer: Narrow interface for the blocking model call.
//   - DiffApplier: Narrow interface for unified-diff application (the
//     default shells out to patch(1)).
//   - CommandRunner: Narrow interface for executing one shell command.
//   - Repository: Narrow interface for staging and committing.
//   - EventEmitter: Typed event stream for host application integration.
//
// Every collaborator is substitutable, so the controller's state machine can
// be driven by scripted implementations in tests.
//
// # Quick Start
//
//	client, err := llm.NewClientFromEnv("openai")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loop := iterate.NewLoop(iterate.LoopDeps{Completer: client}, nil)
//	defer loop.Close()
//
//	if err := loop.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package iterate
