// Package sink delivers the summary of a succeeded job to its destinations.
//
// Session code invokes a ResultSink exactly once per successful job. The
// implementations here print to a writer, save a text file, or push a
// notification; Multi fans one delivery out to several of them.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"bilisum/internal/fileutil"
	"bilisum/internal/jobs"
	"bilisum/internal/logging"
	"bilisum/internal/notifications"
	"bilisum/internal/textutil"
)

// Delivery is the payload handed to a ResultSink.
type Delivery struct {
	Handle  jobs.Handle
	Request jobs.Request
	Summary string
}

// ResultSink receives the summary of a succeeded job.
type ResultSink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// Func adapts a plain function to ResultSink.
type Func func(ctx context.Context, d Delivery) error

// Deliver calls f.
func (f Func) Deliver(ctx context.Context, d Delivery) error {
	return f(ctx, d)
}

// WriterSink prints summaries to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Deliver writes the summary followed by a newline.
func (s *WriterSink) Deliver(_ context.Context, d Delivery) error {
	if s == nil || s.w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	text := strings.TrimRight(d.Summary, "\n")
	if _, err := io.WriteString(s.w, text+"\n"); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// FileSink saves each summary as <source>_<task>_summary.txt under a directory.
type FileSink struct {
	dir    string
	logger *slog.Logger

	mu       sync.Mutex
	lastPath string
}

// NewFileSink returns a sink saving into dir.
func NewFileSink(dir string, logger *slog.Logger) *FileSink {
	return &FileSink{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "file-sink"),
	}
}

// Path returns where d would be saved.
func (s *FileSink) Path(d Delivery) string {
	name := fmt.Sprintf("%s_%s_summary.txt", textutil.SourceSlug(d.Request.Source), textutil.SanitizeToken(d.Handle.JobID))
	return filepath.Join(s.dir, name)
}

// Deliver writes the summary atomically.
func (s *FileSink) Deliver(_ context.Context, d Delivery) error {
	if strings.TrimSpace(s.dir) == "" {
		return errors.New("file sink: output directory not configured")
	}
	path := s.Path(d)
	data := strings.TrimRight(d.Summary, "\n") + "\n"
	if err := fileutil.WriteFileAtomic(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	s.mu.Lock()
	s.lastPath = path
	s.mu.Unlock()
	s.logger.Info("summary saved",
		logging.String(logging.FieldJobID, d.Handle.JobID),
		logging.String("path", path),
	)
	return nil
}

// LastPath returns the most recently written file, or an empty string.
func (s *FileSink) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath
}

// NotifySink announces finished jobs through a notification service.
type NotifySink struct {
	svc notifications.Service
}

// NewNotifySink wraps svc.
func NewNotifySink(svc notifications.Service) *NotifySink {
	return &NotifySink{svc: svc}
}

// Deliver sends a completion notice carrying a preview of the summary.
func (s *NotifySink) Deliver(ctx context.Context, d Delivery) error {
	if s == nil || s.svc == nil {
		return nil
	}
	if err := s.svc.NotifyJobSucceeded(ctx, d.Request.Source, d.Handle.JobID, d.Summary); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

type multi []ResultSink

// Multi fans a delivery out to every non-nil sink. All sinks are attempted;
// their errors are joined.
func Multi(sinks ...ResultSink) ResultSink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Deliver(ctx context.Context, d Delivery) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
