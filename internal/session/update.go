package session

import (
	"errors"
	"fmt"
	"time"

	"bilisum/internal/backend"
	"bilisum/internal/jobs"
)

// UpdateKind classifies status updates for rendering.
type UpdateKind string

const (
	UpdateSubmitting     UpdateKind = "submitting"
	UpdateSubmitFailed   UpdateKind = "submit_failed"
	UpdateProgress       UpdateKind = "progress"
	UpdateWarning        UpdateKind = "warning"
	UpdateSucceeded      UpdateKind = "succeeded"
	UpdateFailed         UpdateKind = "failed"
	UpdateDeliveryFailed UpdateKind = "delivery_failed"
)

// Problem reports whether the update describes something that went wrong.
func (k UpdateKind) Problem() bool {
	switch k {
	case UpdateSubmitFailed, UpdateFailed, UpdateWarning, UpdateDeliveryFailed:
		return true
	default:
		return false
	}
}

// Update is one human-readable status line plus the data behind it.
type Update struct {
	Kind    UpdateKind
	Message string
	Handle  jobs.Handle
	Status  jobs.Status
	Elapsed time.Duration
	Err     error
}

// StatusSink receives updates in the order they happen.
type StatusSink interface {
	Publish(Update)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(Update)

// Publish calls f.
func (f StatusFunc) Publish(u Update) { f(u) }

const (
	msgSubmitting = "🚀 submitting job..."
	msgDone       = "✅ done!"
)

func submitFailureMessage(err error) string {
	var subErr *jobs.SubmissionError
	if !errors.As(err, &subErr) {
		return "❌ submit failed: " + err.Error()
	}
	switch subErr.Kind {
	case jobs.MissingSource:
		return "❌ no video identifier given"
	case jobs.HTTPError:
		return fmt.Sprintf("❌ submit failed: %d", subErr.StatusCode)
	case jobs.MalformedResponse:
		return "❌ unexpected submission response"
	default:
		return "❌ connection failed (check local service)"
	}
}

func progressMessage(status jobs.Status, elapsed time.Duration) string {
	label := status.Reported
	if label == "" {
		label = string(status.State)
	}
	return fmt.Sprintf("⏳ processing... (%s) %ds", label, int(elapsed/time.Second))
}

func warningMessage(err error) string {
	if code := backend.StatusCode(err); code != 0 {
		return fmt.Sprintf("⚠️ status query error: %d", code)
	}
	if errors.Is(err, backend.ErrMalformedBody) {
		return "⚠️ status response unreadable"
	}
	return "⚠️ connection interrupted..."
}

func failureMessage(status jobs.Status) string {
	return "❌ job failed: " + status.Error
}
