package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bilisum/internal/backend"
	"bilisum/internal/logging"
	"bilisum/internal/services"
)

// Creator is the backend surface the Submitter needs.
type Creator interface {
	Submit(ctx context.Context, req backend.ProcessRequest) (backend.ProcessResponse, error)
}

// Submitter creates backend jobs.
type Submitter struct {
	backend Creator
	logger  *slog.Logger
}

// NewSubmitter builds a Submitter over creator.
func NewSubmitter(creator Creator, logger *slog.Logger) *Submitter {
	return &Submitter{
		backend: creator,
		logger:  logging.NewComponentLogger(logger, "submitter"),
	}
}

// Submit sends req to the backend and returns the assigned handle. Every
// failure is a *SubmissionError; a blank source fails before any network call.
func (s *Submitter) Submit(ctx context.Context, req Request) (Handle, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return Handle{}, &SubmissionError{Kind: MissingSource}
	}
	ctx = services.WithPreset(ctx, req.PresetKey)
	logger := logging.WithContext(ctx, s.logger)

	payload := backend.ProcessRequest{
		Source:       source,
		SkipDownload: req.SkipDownload,
		PresetName:   req.PresetKey,
		CustomPrompt: strings.TrimSpace(req.CustomInstruction),
	}
	logger.Info("submitting job",
		logging.String("source", source),
		logging.Bool("custom_prompt", payload.CustomPrompt != ""),
		logging.Bool("skip_download", payload.SkipDownload),
	)

	resp, err := s.backend.Submit(ctx, payload)
	if err != nil {
		subErr := classifySubmitError(err)
		logging.ErrorWithContext(logger, "job submission failed", "job_submit_failed",
			logging.String("kind", subErr.Kind.String()),
			logging.Int("status_code", subErr.StatusCode),
			logging.Error(err),
		)
		return Handle{}, subErr
	}
	if resp.TaskID == "" {
		logging.ErrorWithContext(logger, "job submission returned no task id", "job_submit_malformed",
			logging.String(logging.FieldErrorHint, "check the backend version"),
		)
		return Handle{}, &SubmissionError{Kind: MalformedResponse}
	}

	handle := Handle{JobID: resp.TaskID}
	logging.WithContext(services.WithJobID(ctx, handle.JobID), s.logger).Info("job queued")
	return handle, nil
}

func classifySubmitError(err error) *SubmissionError {
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &SubmissionError{Kind: HTTPError, StatusCode: statusErr.StatusCode, Err: err}
	case errors.Is(err, backend.ErrMalformedBody):
		return &SubmissionError{Kind: MalformedResponse, Err: err}
	default:
		return &SubmissionError{Kind: Unreachable, Err: err}
	}
}
