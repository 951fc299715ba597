package jobs_test

import (
	"context"
	"errors"
	"testing"

	"bilisum/internal/backend"
	"bilisum/internal/jobs"
)

func idlePoller() *jobs.Poller {
	fetcher := fetchFunc(func(context.Context, string) (backend.StatusResponse, error) {
		return backend.StatusResponse{Status: "processing"}, nil
	})
	return jobs.NewPoller(fetcher, newManualTicker().factory())
}

func TestTrackerRejectsSecondActiveJob(t *testing.T) {
	var tracker jobs.Tracker
	poller := idlePoller()

	first := poller.Start(context.Background(), jobs.Handle{JobID: "one"}, nil)
	if err := tracker.Begin(first); err != nil {
		t.Fatalf("Begin first: %v", err)
	}
	second := poller.Start(context.Background(), jobs.Handle{JobID: "two"}, nil)
	t.Cleanup(second.Cancel)
	if err := tracker.Begin(second); !errors.Is(err, jobs.ErrJobAlreadyRunning) {
		t.Fatalf("expected ErrJobAlreadyRunning, got %v", err)
	}

	if !tracker.Cancel() {
		t.Fatal("expected an active job to cancel")
	}
	waitDone(t, first)
	if _, ok := tracker.Active(); ok {
		t.Fatal("expected no active job after cancel")
	}
	if err := tracker.Begin(second); err != nil {
		t.Fatalf("Begin after cancel: %v", err)
	}
	if token, ok := tracker.Active(); !ok || token.Handle().JobID != "two" {
		t.Fatalf("unexpected active token %v", token)
	}
}

func TestTrackerCancelWithoutJob(t *testing.T) {
	var tracker jobs.Tracker
	if tracker.Cancel() {
		t.Fatal("expected nothing to cancel")
	}
}
