package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"borsch/internal/config"
	"borsch/internal/execution"
	"borsch/internal/highlight"
	"borsch/internal/logging"
	"borsch/internal/playground"
)

// programExitError carries a non-zero program exit code out of the command.
type programExitError struct {
	exitCode int64
}

func (e *programExitError) Error() string {
	return fmt.Sprintf("program exited with code %d", e.exitCode)
}

// code maps the program's exit code onto a process exit status.
func (e *programExitError) code() int {
	if e.exitCode > 0 && e.exitCode < 256 {
		return int(e.exitCode)
	}
	return 1
}

type runResult struct {
	State        string   `json:"state"`
	JobID        string   `json:"job_id,omitempty"`
	Output       []string `json:"output"`
	ExitCode     *int64   `json:"exit_code"`
	RawOutputURL string   `json:"raw_output_url,omitempty"`
	Error        string   `json:"error,omitempty"`
	Retryable    bool     `json:"retryable,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var langVersion string
	var latest bool
	var jsonOut bool
	var showSource bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Submit a program and stream its output",
		Long: "Submit a Borsch program to the playground service and print its output as it arrives.\n" +
			"Reads stdin when no file or \"-\" is given. The program's exit code becomes the command's exit status.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			client, cfg, logger, err := ctx.newClient()
			if err != nil {
				return err
			}

			version, err := resolveLanguageVersion(cmd.Context(), client, cfg, langVersion, latest)
			if err != nil {
				return err
			}
			logger.Debug("run requested",
				logging.String("source", name),
				logging.String("language_version", version),
				logging.String("api", client.BaseURL()),
			)

			if showSource && !jsonOut {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, strings.TrimRight(highlight.Borsch().Render(source, shouldColorize(out)), "\n"))
				fmt.Fprintln(out)
			}

			r := &runner{
				out:      cmd.OutOrStdout(),
				status:   cmd.ErrOrStderr(),
				jsonOut:  jsonOut,
				quiet:    quiet,
				colorize: shouldColorize(cmd.ErrOrStderr()),
			}
			snap, err := r.run(cmd.Context(), client, source, version, cfg, logger)
			if err != nil {
				return err
			}
			if jsonOut {
				if err := writeJSON(cmd, newRunResult(snap)); err != nil {
					return err
				}
			}
			return runOutcome(snap)
		},
	}

	cmd.Flags().StringVar(&langVersion, "lang", "", "Language version to run (defaults to execution.language_version)")
	cmd.Flags().BoolVar(&latest, "latest", false, "Use the first language version advertised by the service")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the final result as JSON instead of streaming output")
	cmd.Flags().BoolVar(&showSource, "show-source", false, "Print the highlighted source before running it")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress status lines on stderr")
	return cmd
}

func resolveLanguageVersion(ctx context.Context, client *playground.Client, cfg *config.Config, flag string, latest bool) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, nil
	}
	if !latest && !cfg.Execution.ResolveLatestVersion {
		return cfg.Execution.LanguageVersion, nil
	}
	versions, err := client.ListLanguageVersions(ctx)
	if err != nil {
		return "", fmt.Errorf("list language versions: %s", playground.UserMessage(err))
	}
	if len(versions) == 0 {
		return "", errors.New("list language versions: service advertised no versions")
	}
	return versions[0], nil
}

type runner struct {
	out      io.Writer
	status   io.Writer
	jsonOut  bool
	quiet    bool
	colorize bool

	printed   int
	lastState execution.State
	announced bool
}

func (r *runner) run(ctx context.Context, client *playground.Client, source, version string, cfg *config.Config, logger *slog.Logger) (execution.Snapshot, error) {
	updates := make(chan execution.Snapshot, 1)
	ctrl := execution.New(client, source,
		execution.WithLanguageVersion(version),
		execution.WithPollInterval(cfg.PollInterval()),
		execution.WithLogger(logger),
		execution.WithRawOutputURL(client.RawOutputURL),
		execution.WithObserver(func(s execution.Snapshot) { offerLatest(updates, s) }),
	)
	defer ctrl.Close()

	done := make(chan struct{})
	var final execution.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		ctrl.Submit(ctx)
		snap, err := ctrl.Wait(gctx)
		final = snap
		return err
	})
	g.Go(func() error {
		for {
			select {
			case snap := <-updates:
				r.render(snap)
			case <-done:
				r.render(ctrl.Snapshot())
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		return final, err
	}
	if final.State == execution.StateIdle {
		return final, context.Canceled
	}
	return final, nil
}

// offerLatest replaces any undelivered snapshot with s. The observer is never
// called concurrently, so one sender owns the channel.
func offerLatest(ch chan execution.Snapshot, s execution.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (r *runner) render(snap execution.Snapshot) {
	if !r.jsonOut && len(snap.Transcript) > r.printed {
		for _, line := range snap.Transcript[r.printed:] {
			fmt.Fprintln(r.out, line)
		}
		r.printed = len(snap.Transcript)
	}
	if r.quiet || r.jsonOut {
		return
	}
	if r.announced && snap.State == r.lastState {
		return
	}
	if snap.State == execution.StateIdle && !r.announced {
		return
	}
	r.announced = true
	r.lastState = snap.State
	fmt.Fprintln(r.status, renderState(snap, r.colorize))
}

func runOutcome(snap execution.Snapshot) error {
	switch {
	case snap.State.Failed():
		if playground.Retryable(snap.Err) {
			return fmt.Errorf("%s: %s (retry may succeed)", strings.ToLower(stateLabel(snap.State)), snap.ErrorMessage)
		}
		return fmt.Errorf("%s: %s", strings.ToLower(stateLabel(snap.State)), snap.ErrorMessage)
	case snap.State == execution.StateFinished && snap.ExitCode != 0:
		return &programExitError{exitCode: snap.ExitCode}
	default:
		return nil
	}
}

func newRunResult(snap execution.Snapshot) runResult {
	result := runResult{
		State:        snap.State.String(),
		JobID:        snap.JobID,
		Output:       snap.Transcript,
		RawOutputURL: snap.RawOutputURL,
		Error:        snap.ErrorMessage,
	}
	if result.Output == nil {
		result.Output = []string{}
	}
	if snap.HasExitCode() {
		code := snap.ExitCode
		result.ExitCode = &code
	}
	if snap.Err != nil {
		result.Retryable = playground.Retryable(snap.Err)
	}
	return result
}
