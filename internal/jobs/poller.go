package jobs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bilisum/internal/backend"
	"bilisum/internal/logging"
	"bilisum/internal/services"
)

const (
	// DefaultPollInterval is the start-to-start spacing between status queries.
	DefaultPollInterval = time.Second

	defaultFailureMessage = "job failed without an error message"
)

// StatusFetcher is the backend surface the Poller needs.
type StatusFetcher interface {
	Status(ctx context.Context, taskID string) (backend.StatusResponse, error)
}

// Ticker delivers poll ticks. It mirrors the parts of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func newTimeTicker(interval time.Duration) Ticker {
	return timeTicker{time.NewTicker(interval)}
}

// Poller repeatedly queries job status until a terminal state.
type Poller struct {
	fetcher   StatusFetcher
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	logger    *slog.Logger
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithInterval sets the tick interval. Non-positive values are ignored.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithTicker replaces the ticker factory.
func WithTicker(factory func(time.Duration) Ticker) PollerOption {
	return func(p *Poller) {
		if factory != nil {
			p.newTicker = factory
		}
	}
}

// WithClock replaces the clock used to stamp observations.
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPollerLogger attaches a logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logging.NewComponentLogger(logger, "poller")
	}
}

// NewPoller builds a Poller over fetcher.
func NewPoller(fetcher StatusFetcher, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:   fetcher,
		interval:  DefaultPollInterval,
		newTicker: newTimeTicker,
		now:       time.Now,
		logger:    logging.NewComponentLogger(nil, "poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured tick interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start begins polling handle and returns the token controlling it.
//
// onUpdate receives an implicit queued status right away, then one status per
// completed poll, on the polling goroutine. A terminal status is delivered
// before the token's Done channel closes. Nothing is delivered after Cancel.
// Every call starts an independent sequence, including for a handle whose
// previous sequence was cancelled.
func (p *Poller) Start(ctx context.Context, handle Handle, onUpdate func(Status)) *Token {
	if onUpdate == nil {
		onUpdate = func(Status) {}
	}
	token := newToken(handle)
	ctx = services.WithJobID(ctx, handle.JobID)
	go p.run(ctx, token, onUpdate)
	return token
}

func (p *Poller) run(ctx context.Context, token *Token, onUpdate func(Status)) {
	logger := logging.WithContext(ctx, p.logger)
	ticker := p.newTicker(p.interval)
	end := func(status Status, hasFinal bool, err error) {
		ticker.Stop()
		token.finish(status, hasFinal, err)
	}

	deliver := func(status Status) bool {
		if token.Cancelled() {
			return false
		}
		onUpdate(status)
		return true
	}

	last := StateQueued
	if !deliver(Status{State: StateQueued, ObservedAt: p.now()}) {
		end(Status{}, false, ErrCancelled)
		return
	}

	// At most one poll is outstanding, so a single slot never blocks the sender.
	results := make(chan Status, 1)
	inflight := false
	attempt := 0
	for {
		select {
		case <-token.stop:
			logger.Debug("polling cancelled", logging.Int("attempts", attempt))
			end(Status{}, false, ErrCancelled)
			return
		case <-ctx.Done():
			logger.Debug("polling stopped by context", logging.Error(ctx.Err()))
			end(Status{}, false, ctx.Err())
			return
		case <-ticker.C():
			// select picks randomly among ready cases; a tick may win over stop.
			if token.Cancelled() {
				logger.Debug("dropping tick after cancel", logging.Int("attempts", attempt))
				end(Status{}, false, ErrCancelled)
				return
			}
			if err := ctx.Err(); err != nil {
				logger.Debug("dropping tick after context end", logging.Error(err))
				end(Status{}, false, err)
				return
			}
			if inflight {
				logger.Debug("skipping tick, previous poll still in flight", logging.Int("attempt", attempt))
				continue
			}
			inflight = true
			attempt++
			go p.poll(ctx, token.handle, attempt, results)
		case status := <-results:
			inflight = false
			if status.Transient() {
				status.State = last
				logging.WarnWithContext(logger, "status query failed", "status_poll_failed",
					logging.Int("attempt", status.Attempt),
					logging.Error(status.Warning),
					logging.String(logging.FieldErrorHint, "polling continues on the next tick"),
					logging.String(logging.FieldImpact, "status shown may be stale"),
				)
			} else {
				last = status.State
			}
			if !deliver(status) {
				logger.Debug("discarding status received after cancel", logging.Int("attempt", status.Attempt))
				end(Status{}, false, ErrCancelled)
				return
			}
			if status.Terminal() {
				logger.Info("job finished",
					logging.String("state", string(status.State)),
					logging.Int("attempts", status.Attempt),
				)
				end(status, true, nil)
				return
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context, handle Handle, attempt int, results chan<- Status) {
	resp, err := p.fetcher.Status(ctx, handle.JobID)
	if err != nil {
		results <- Status{
			Attempt:    attempt,
			ObservedAt: p.now(),
			Warning:    services.Wrap(services.ErrTransient, "poller", "status", "status query failed", err),
		}
		return
	}
	status := statusFromResponse(resp)
	status.Attempt = attempt
	status.ObservedAt = p.now()
	if status.State == StateSucceeded && resp.Result == nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "job succeeded without a result", "status_missing_result",
			logging.String(logging.FieldImpact, "an empty summary is delivered"),
		)
	}
	results <- status
}

// StatusFromResponse converts one backend status body into a Status.
func StatusFromResponse(resp backend.StatusResponse) Status {
	return statusFromResponse(resp)
}

func statusFromResponse(resp backend.StatusResponse) Status {
	status := Status{
		State:    ParseState(resp.Status),
		Reported: strings.TrimSpace(resp.Status),
	}
	switch status.State {
	case StateSucceeded:
		status.Result = &Result{}
		if resp.Result != nil {
			status.Result.Summary = resp.Result.Summary
		}
	case StateFailed:
		status.Error = strings.TrimSpace(resp.Error)
		if status.Error == "" {
			status.Error = defaultFailureMessage
		}
	}
	return status
}
