package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bilisum/internal/jobs"
	"bilisum/internal/logging"
	"bilisum/internal/presets"
	"bilisum/internal/services"
	"bilisum/internal/sink"
)

var (
	// ErrUnknownPreset is returned when a request names a preset that is not offered.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrJobFailed wraps the backend's error message for a failed job.
	ErrJobFailed = errors.New("job failed")
	// ErrDeliveryFailed is returned when the job succeeded but a result sink did not.
	ErrDeliveryFailed = errors.New("summary delivery failed")
)

// Outcome is the result of a job that was followed to the end.
type Outcome struct {
	Handle      jobs.Handle  `json:"handle"`
	Final       jobs.Status  `json:"final"`
	Transitions []jobs.Entry `json:"transitions"`
}

// Session coordinates preset lookup, submission, polling and delivery.
type Session struct {
	presets   *presets.Source
	submitter *jobs.Submitter
	poller    *jobs.Poller
	status    StatusSink
	results   sink.ResultSink
	logger    *slog.Logger
	now       func() time.Time
	tracker   jobs.Tracker

	startMu   sync.Mutex
	mu        sync.Mutex
	selection presets.Selection
	loaded    bool
}

// Option customizes a Session.
type Option func(*Session)

// WithStatusSink sets where updates are published.
func WithStatusSink(status StatusSink) Option {
	return func(s *Session) {
		s.status = status
	}
}

// WithResultSink sets where summaries of succeeded jobs go.
func WithResultSink(results sink.ResultSink) Option {
	return func(s *Session) {
		s.results = results
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logging.NewComponentLogger(logger, "session")
	}
}

// WithClock replaces the clock used for elapsed times.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Session.
func New(source *presets.Source, submitter *jobs.Submitter, poller *jobs.Poller, opts ...Option) *Session {
	s := &Session{
		presets:   source,
		submitter: submitter,
		poller:    poller,
		logger:    logging.NewComponentLogger(nil, "session"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadPresets fetches the preset catalogue and remembers it for validation.
// It never fails; an unreachable backend yields the fallback list.
func (s *Session) LoadPresets(ctx context.Context) presets.Selection {
	selection := s.presets.Fetch(ctx)
	s.mu.Lock()
	s.selection = selection
	s.loaded = true
	s.mu.Unlock()
	return selection
}

func (s *Session) currentSelection(ctx context.Context) presets.Selection {
	s.mu.Lock()
	selection, loaded := s.selection, s.loaded
	s.mu.Unlock()
	if loaded {
		return selection
	}
	return s.LoadPresets(ctx)
}

// Start submits req and begins polling. The returned token cancels the job's
// polling; the status sink sees every transition and the result sink gets the
// summary once if the job succeeds.
func (s *Session) Start(ctx context.Context, req jobs.Request) (*jobs.Token, error) {
	r, err := s.start(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.token, nil
}

// Run submits req and follows it until it succeeds, fails, or ctx ends.
func (s *Session) Run(ctx context.Context, req jobs.Request) (Outcome, error) {
	r, err := s.start(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	return s.wait(ctx, r)
}

// Watch follows an already submitted job until it succeeds, fails, or ctx ends.
func (s *Session) Watch(ctx context.Context, handle jobs.Handle) (Outcome, error) {
	handle.JobID = strings.TrimSpace(handle.JobID)
	if handle.JobID == "" {
		return Outcome{}, services.Wrap(services.ErrValidation, "session", "watch", "task id required", nil)
	}
	s.startMu.Lock()
	r, err := s.attach(ctx, handle, jobs.Request{})
	s.startMu.Unlock()
	if err != nil {
		return Outcome{}, err
	}
	return s.wait(ctx, r)
}

// Cancel stops the active job, if any, and reports whether one was running.
func (s *Session) Cancel() bool {
	return s.tracker.Cancel()
}

type run struct {
	handle  jobs.Handle
	request jobs.Request
	token   *jobs.Token
	journal *jobs.Journal
	started time.Time

	mu          sync.Mutex
	deliveryErr error
}

func (s *Session) start(ctx context.Context, req jobs.Request) (*run, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if token, ok := s.tracker.Active(); ok {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobAlreadyRunning, token.Handle().JobID)
	}

	req.Source = strings.TrimSpace(req.Source)
	req.PresetKey = strings.TrimSpace(req.PresetKey)
	if req.Source == "" {
		err := &jobs.SubmissionError{Kind: jobs.MissingSource}
		s.emit(Update{Kind: UpdateSubmitFailed, Message: submitFailureMessage(err), Err: err})
		return nil, err
	}
	if req.PresetKey != "" {
		selection := s.currentSelection(ctx)
		if !selection.Contains(req.PresetKey) {
			return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, req.PresetKey, strings.Join(selection.Keys(), ", "))
		}
	}

	s.emit(Update{Kind: UpdateSubmitting, Message: msgSubmitting})
	handle, err := s.submitter.Submit(ctx, req)
	if err != nil {
		s.emit(Update{Kind: UpdateSubmitFailed, Message: submitFailureMessage(err), Err: err})
		return nil, err
	}
	return s.attach(ctx, handle, req)
}

func (s *Session) attach(ctx context.Context, handle jobs.Handle, req jobs.Request) (*run, error) {
	if token, ok := s.tracker.Active(); ok {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobAlreadyRunning, token.Handle().JobID)
	}
	r := &run{
		handle:  handle,
		request: req,
		journal: jobs.NewJournal(0),
		started: s.now(),
	}
	ctx = services.WithPreset(services.WithJobID(ctx, handle.JobID), req.PresetKey)
	r.token = s.poller.Start(ctx, handle, func(status jobs.Status) {
		s.observe(ctx, r, status)
	})
	if err := s.tracker.Begin(r.token); err != nil {
		r.token.Cancel()
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("tracking job", logging.String("source", req.Source))
	return r, nil
}

// observe runs on the polling goroutine. Delivery to the result sink happens
// here so it completes before the token reports the terminal status.
func (s *Session) observe(ctx context.Context, r *run, status jobs.Status) {
	r.journal.Record(r.handle, status)
	update := Update{
		Handle:  r.handle,
		Status:  status,
		Elapsed: status.ObservedAt.Sub(r.started),
	}
	switch {
	case status.Transient():
		update.Kind = UpdateWarning
		update.Message = warningMessage(status.Warning)
		update.Err = status.Warning
	case status.State == jobs.StateSucceeded:
		update.Kind = UpdateSucceeded
		update.Message = msgDone
	case status.State == jobs.StateFailed:
		update.Kind = UpdateFailed
		update.Message = failureMessage(status)
	default:
		update.Kind = UpdateProgress
		update.Message = progressMessage(status, update.Elapsed)
	}
	s.emit(update)

	if status.State != jobs.StateSucceeded || !status.Terminal() || s.results == nil {
		return
	}
	delivery := sink.Delivery{Handle: r.handle, Request: r.request, Summary: status.Summary()}
	if err := s.results.Deliver(ctx, delivery); err != nil {
		r.mu.Lock()
		r.deliveryErr = err
		r.mu.Unlock()
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "summary delivery failed", "summary_delivery_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output.dir permissions and notification settings"),
		)
		s.emit(Update{
			Kind:    UpdateDeliveryFailed,
			Message: "⚠️ could not deliver summary: " + err.Error(),
			Handle:  r.handle,
			Status:  status,
			Elapsed: update.Elapsed,
			Err:     err,
		})
	}
}

func (s *Session) wait(ctx context.Context, r *run) (Outcome, error) {
	final, err := r.token.Wait(ctx)
	if err != nil {
		r.token.Cancel()
		<-r.token.Done()
	}
	outcome := Outcome{
		Handle:      r.handle,
		Final:       final,
		Transitions: r.journal.Since(0),
	}
	if err != nil {
		return outcome, err
	}
	if final.State == jobs.StateFailed {
		return outcome, fmt.Errorf("%w: %s", ErrJobFailed, final.Error)
	}
	r.mu.Lock()
	deliveryErr := r.deliveryErr
	r.mu.Unlock()
	if deliveryErr != nil {
		return outcome, fmt.Errorf("%w: %w", ErrDeliveryFailed, deliveryErr)
	}
	return outcome, nil
}

func (s *Session) emit(update Update) {
	if s.status == nil {
		return
	}
	s.status.Publish(update)
}
