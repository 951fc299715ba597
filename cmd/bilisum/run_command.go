package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bilisum/internal/config"
	"bilisum/internal/jobs"
	"bilisum/internal/logging"
	"bilisum/internal/notifications"
	"bilisum/internal/session"
	"bilisum/internal/sink"
)

type followOptions struct {
	timeout time.Duration
	asJSON  bool
	noFile  bool
}

type jobReport struct {
	TaskID      string       `json:"task_id,omitempty"`
	Source      string       `json:"source,omitempty"`
	Preset      string       `json:"preset,omitempty"`
	State       jobs.State   `json:"state,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Error       string       `json:"error,omitempty"`
	SavedTo     string       `json:"saved_to,omitempty"`
	Transitions []jobs.Entry `json:"transitions,omitempty"`
}

// followFunc performs the job-specific step: submit-and-run or watch.
type followFunc func(ctx context.Context, sess *session.Session) (session.Outcome, jobs.Request, error)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var presetFlag string
	var prompt string
	var skipDownload bool
	var opts followOptions

	cmd := &cobra.Command{
		Use:   "run SOURCE",
		Short: "Submit a job and wait for its summary",
		Long: "Submit a job for SOURCE (a BV id, video URL, or backend-local file path),\n" +
			"poll until it finishes, then print the summary and save it under output.dir.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("skip-download") {
				skipDownload = cfg.Backend.SkipDownload
			}
			source := args[0]
			return followJob(cmd, ctx, opts, func(runCtx context.Context, sess *session.Session) (session.Outcome, jobs.Request, error) {
				req := jobs.Request{
					Source:            source,
					CustomInstruction: prompt,
					SkipDownload:      skipDownload,
				}
				if strings.TrimSpace(source) != "" {
					preset, err := resolvePreset(sess.LoadPresets(runCtx), presetFlag)
					if err != nil {
						return session.Outcome{}, req, err
					}
					req.PresetKey = preset
				}
				outcome, err := sess.Run(runCtx, req)
				return outcome, req, err
			})
		},
	}

	cmd.Flags().StringVarP(&presetFlag, "preset", "p", "", "Preset key (default: backend default)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom instruction that overrides the preset prompt")
	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "Reuse a file the backend already downloaded")
	addFollowFlags(cmd, &opts)
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var opts followOptions

	cmd := &cobra.Command{
		Use:   "watch TASK_ID",
		Short: "Follow an already submitted job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := jobs.Handle{JobID: strings.TrimSpace(args[0])}
			return followJob(cmd, ctx, opts, func(runCtx context.Context, sess *session.Session) (session.Outcome, jobs.Request, error) {
				outcome, err := sess.Watch(runCtx, handle)
				return outcome, jobs.Request{}, err
			})
		},
	}

	addFollowFlags(cmd, &opts)
	return cmd
}

func addFollowFlags(cmd *cobra.Command, opts *followOptions) {
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Stop waiting after this long (default: polling.timeout_seconds, 0 waits forever)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the outcome as JSON instead of plain text")
	cmd.Flags().BoolVar(&opts.noFile, "no-file", false, "Do not save the summary under output.dir")
}

func followJob(cmd *cobra.Command, ctx *commandContext, opts followOptions, follow followFunc) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("timeout") {
		opts.timeout = cfg.PollTimeout()
	}

	lock, err := session.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lock", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()

	notifier := notifications.NewService(cfg)
	results, fileSink := buildResultSinks(cmd, cfg, opts, notifier, logger)
	printer := newUpdatePrinter(cmd.ErrOrStderr())
	defer printer.Close()

	sess, err := ctx.newSession(printer, results)
	if err != nil {
		return err
	}

	runCtx, cancel := withOptionalTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	outcome, req, err := follow(runCtx, sess)
	printer.Close()

	if errors.Is(err, session.ErrJobFailed) {
		if notifyErr := notifier.NotifyJobFailed(cmd.Context(), req.Source, outcome.Handle.JobID, outcome.Final.Error); notifyErr != nil {
			logging.WarnWithContext(logger, "failure notification not sent", "notify_failed",
				logging.Error(notifyErr),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) && opts.timeout > 0 {
		err = fmt.Errorf("gave up after %s; the job keeps running, follow it with `bilisum watch %s`: %w",
			opts.timeout, outcome.Handle.JobID, err)
	}

	savedTo := ""
	if fileSink != nil {
		savedTo = fileSink.LastPath()
	}
	if opts.asJSON {
		if outcome.Handle.JobID != "" {
			if jsonErr := writeJSON(cmd, newJobReport(outcome, req, savedTo)); jsonErr != nil {
				return jsonErr
			}
		}
		return err
	}
	if savedTo != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", savedTo)
	}
	return err
}

func buildResultSinks(cmd *cobra.Command, cfg *config.Config, opts followOptions, notifier notifications.Service, logger *slog.Logger) (sink.ResultSink, *sink.FileSink) {
	var sinks []sink.ResultSink
	if !opts.asJSON {
		sinks = append(sinks, sink.NewWriterSink(cmd.OutOrStdout()))
	}
	var fileSink *sink.FileSink
	if cfg.Output.WriteFiles && !opts.noFile {
		fileSink = sink.NewFileSink(cfg.Output.Dir, logger)
		sinks = append(sinks, fileSink)
	}
	if notifications.Enabled(notifier) {
		sinks = append(sinks, sink.NewNotifySink(notifier))
	}
	return sink.Multi(sinks...), fileSink
}

func newJobReport(outcome session.Outcome, req jobs.Request, savedTo string) jobReport {
	return jobReport{
		TaskID:      outcome.Handle.JobID,
		Source:      strings.TrimSpace(req.Source),
		Preset:      req.PresetKey,
		State:       outcome.Final.State,
		Summary:     outcome.Final.Summary(),
		Error:       outcome.Final.Error,
		SavedTo:     savedTo,
		Transitions: outcome.Transitions,
	}
}
