package sink_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bilisum/internal/jobs"
	"bilisum/internal/sink"
)

type recordingNotifier struct {
	source, jobID, summary string
	err                    error
}

func (r *recordingNotifier) NotifyJobSucceeded(_ context.Context, source, jobID, summary string) error {
	r.source, r.jobID, r.summary = source, jobID, summary
	return r.err
}

func (r *recordingNotifier) NotifyJobFailed(context.Context, string, string, string) error {
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func delivery() sink.Delivery {
	return sink.Delivery{
		Handle:  jobs.Handle{JobID: "abc"},
		Request: jobs.Request{Source: "https://www.bilibili.com/video/BV1xx411c7mD", PresetKey: "bilibili_summary"},
		Summary: "X",
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	if err := sink.NewWriterSink(&buf).Deliver(context.Background(), delivery()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if buf.String() != "X\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFileSinkWritesNamedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "summaries")
	fs := sink.NewFileSink(dir, nil)

	if err := fs.Deliver(context.Background(), delivery()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	want := filepath.Join(dir, "BV1xx411c7mD_abc_summary.txt")
	if fs.LastPath() != want {
		t.Fatalf("LastPath = %q, want %q", fs.LastPath(), want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if string(data) != "X\n" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestFileSinkRequiresDirectory(t *testing.T) {
	if err := sink.NewFileSink(" ", nil).Deliver(context.Background(), delivery()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNotifySink(t *testing.T) {
	notifier := &recordingNotifier{}
	if err := sink.NewNotifySink(notifier).Deliver(context.Background(), delivery()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if notifier.jobID != "abc" || notifier.summary != "X" || notifier.source == "" {
		t.Fatalf("unexpected notification %+v", notifier)
	}
}

func TestMultiAttemptsEverySink(t *testing.T) {
	errFirst := errors.New("first failed")
	var calls []string
	first := sink.Func(func(context.Context, sink.Delivery) error {
		calls = append(calls, "first")
		return errFirst
	})
	second := sink.Func(func(_ context.Context, d sink.Delivery) error {
		calls = append(calls, "second:"+d.Summary)
		return nil
	})

	err := sink.Multi(first, nil, second).Deliver(context.Background(), delivery())
	if !errors.Is(err, errFirst) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(calls) != 2 || calls[1] != "second:X" {
		t.Fatalf("unexpected calls %v", calls)
	}
}
