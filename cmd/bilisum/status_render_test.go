package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"bilisum/internal/jobs"
	"bilisum/internal/session"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Task abc", statusError, "Failed", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Task abc:", "[ERROR] Failed")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Task abc", statusOK, "Succeeded", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStateLabel(t *testing.T) {
	if got := stateLabel(jobs.StateProcessing); got != "Processing" {
		t.Fatalf("stateLabel = %q", got)
	}
}

func TestStatusLines(t *testing.T) {
	handle := jobs.Handle{JobID: "abc"}

	lines := statusLines(handle, jobs.Status{State: jobs.StateProcessing, Reported: "transcribing"}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[INFO] Processing") {
		t.Fatalf("unexpected state line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[INFO] transcribing") {
		t.Fatalf("expected reported status, got %q", lines[1])
	}

	lines = statusLines(handle, jobs.Status{State: jobs.StateFailed, Reported: "failed", Error: "boom"}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR] Failed") || !strings.Contains(lines[1], "[ERROR] boom") {
		t.Fatalf("unexpected failure lines %q", lines)
	}

	warn := jobs.Status{State: jobs.StateProcessing, Warning: errors.New("http 500")}
	if kind := stateKind(warn); kind != statusWarn {
		t.Fatalf("transient status kind = %v, want warn", kind)
	}
}

func TestUpdatePrinterDeduplicatesProgress(t *testing.T) {
	var buf bytes.Buffer
	printer := newUpdatePrinter(&buf)

	progress := func(reported string, elapsed int) session.Update {
		return session.Update{
			Kind:    session.UpdateProgress,
			Message: fmt.Sprintf("processing (%s) %ds", reported, elapsed),
			Status:  jobs.Status{State: jobs.StateProcessing, Reported: reported},
		}
	}
	printer.Publish(session.Update{Kind: session.UpdateSubmitting, Message: "submitting"})
	printer.Publish(progress("downloading", 1))
	printer.Publish(progress("downloading", 2))
	printer.Publish(progress("summarizing", 3))
	printer.Publish(session.Update{Kind: session.UpdateSucceeded, Message: "done"})
	printer.Close()

	want := "submitting\nprocessing (downloading) 1s\nprocessing (summarizing) 3s\ndone\n"
	if got := buf.String(); got != want {
		t.Fatalf("printer output mismatch\n got: %q\nwant: %q", got, want)
	}
}
