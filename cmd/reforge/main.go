package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/martinemde/reforge/iterate"
	"github.com/martinemde/reforge/llm"
)

// Exit codes. Missing credentials are distinguishable from run failures so
// wrappers can tell a misconfigured environment from a rejected patch.
const (
	exitFailure   = 1
	exitBadConfig = 2
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		var configErr *llm.ConfigurationError
		if errors.As(err, &configErr) {
			os.Exit(exitBadConfig)
		}
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	var (
		maxIterations int
		model         string
		provider      string
		configPath    string
		workDir       string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "reforge",
		Short: "Iteratively improve a project with an LLM",
		Long: "Reforge snapshots the project tree, asks a language model for a unified diff\n" +
			"and shell commands, applies them, logs command output back into the tree, and\n" +
			"commits -- repeating until the model proposes no change or the iteration\n" +
			"budget runs out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := iterate.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-iterations") {
				cfg.MaxIterations = maxIterations
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("provider") {
				cfg.Provider = provider
			}
			if cmd.Flags().Changed("dir") {
				cfg.WorkDir = workDir
			}

			// Credential check happens here, before any iteration begins.
			client, err := llm.NewClientFromEnv(cfg.Provider)
			if err != nil {
				return err
			}
			defer client.Close()

			loop := iterate.NewLoop(iterate.LoopDeps{Completer: client}, &cfg)
			defer loop.Close()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				renderEvents(loop.Events(), verbose)
			}()

			err = loop.Run(cmd.Context())
			loop.Close()
			wg.Wait()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 1, "Maximum number of review iterations")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default from config)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, groq)")
	cmd.Flags().StringVarP(&configPath, "config", "c", ".reforge.yaml", "Config file path")
	cmd.Flags().StringVar(&workDir, "dir", "", "Project directory (default current directory)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every loop event")

	return cmd
}

// renderEvents prints loop progress. Errors go to stderr; everything else is
// quiet unless verbose is set, except the iteration banner and stop notice.
func renderEvents(events <-chan iterate.LoopEvent, verbose bool) {
	for event := range events {
		switch event.Kind {
		case iterate.EventIterationStart:
			fmt.Printf("Iteration %v/%v\n", event.Data["iteration"], event.Data["max_iterations"])
		case iterate.EventNoProposal:
			fmt.Println("No changes proposed by model.")
		case iterate.EventCommitted:
			fmt.Printf("Committed: %v\n", event.Data["message"])
		case iterate.EventError:
			fmt.Fprintf(os.Stderr, "error: %v\n", event.Data["error"])
		default:
			if verbose {
				fmt.Fprintf(os.Stderr, "[%s] %v\n", event.Kind, event.Data)
			}
		}
	}
}
