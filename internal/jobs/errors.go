package jobs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSource     = errors.New("content identifier is required")
	ErrMalformedResponse = errors.New("malformed submission response")
	ErrHTTPStatus        = errors.New("submission rejected by backend")
	ErrUnreachable       = errors.New("backend unreachable")
	// ErrJobAlreadyRunning is returned when tracking a second job.
	ErrJobAlreadyRunning = errors.New("job already running")
)

// SubmissionErrorKind distinguishes the ways a submission can fail.
type SubmissionErrorKind int

const (
	MissingSource SubmissionErrorKind = iota + 1
	MalformedResponse
	HTTPError
	Unreachable
)

func (k SubmissionErrorKind) String() string {
	switch k {
	case MissingSource:
		return "missing_source"
	case MalformedResponse:
		return "malformed_response"
	case HTTPError:
		return "http_error"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

func (k SubmissionErrorKind) sentinel() error {
	switch k {
	case MissingSource:
		return ErrMissingSource
	case MalformedResponse:
		return ErrMalformedResponse
	case HTTPError:
		return ErrHTTPStatus
	case Unreachable:
		return ErrUnreachable
	default:
		return nil
	}
}

// SubmissionError reports why a job could not be created. It matches the
// kind's sentinel with errors.Is and unwraps to the underlying cause.
type SubmissionError struct {
	Kind       SubmissionErrorKind
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	var msg string
	switch e.Kind {
	case HTTPError:
		msg = fmt.Sprintf("submit job: backend returned http %d", e.StatusCode)
	case MissingSource:
		msg = "submit job: " + ErrMissingSource.Error()
	case MalformedResponse:
		msg = "submit job: response did not contain a task id"
	case Unreachable:
		msg = "submit job: backend unreachable"
	default:
		msg = "submit job: failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// ErrCancelled is reported by Token.Err after Cancel stopped polling.
var ErrCancelled = errors.New("polling cancelled")
