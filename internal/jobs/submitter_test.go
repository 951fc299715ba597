package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bilisum/internal/backend"
	"bilisum/internal/jobs"
)

type countingCreator struct {
	calls int
}

func (c *countingCreator) Submit(context.Context, backend.ProcessRequest) (backend.ProcessResponse, error) {
	c.calls++
	return backend.ProcessResponse{TaskID: "never"}, nil
}

func newBackend(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(srv.URL, backend.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSubmitMissingSourceMakesNoCall(t *testing.T) {
	for _, source := range []string{"", "   ", "\t\n"} {
		creator := &countingCreator{}
		_, err := jobs.NewSubmitter(creator, nil).Submit(context.Background(), jobs.Request{Source: source, PresetKey: "translation"})
		if !errors.Is(err, jobs.ErrMissingSource) {
			t.Fatalf("source %q: expected ErrMissingSource, got %v", source, err)
		}
		var subErr *jobs.SubmissionError
		if !errors.As(err, &subErr) || subErr.Kind != jobs.MissingSource {
			t.Fatalf("source %q: expected MissingSource kind, got %v", source, err)
		}
		if creator.calls != 0 {
			t.Fatalf("source %q: expected no backend call, got %d", source, creator.calls)
		}
	}
}

func TestSubmitReturnsTaskID(t *testing.T) {
	var got backend.ProcessRequest
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"task_id":"abc"}`)
	})

	handle, err := jobs.NewSubmitter(client, nil).Submit(context.Background(), jobs.Request{
		Source:            " BV123 ",
		PresetKey:         "translation",
		CustomInstruction: "  keep it short  ",
		SkipDownload:      true,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if handle.JobID != "abc" {
		t.Fatalf("expected handle abc, got %q", handle.JobID)
	}
	want := backend.ProcessRequest{Source: "BV123", SkipDownload: true, PresetName: "translation", CustomPrompt: "keep it short"}
	if got != want {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestSubmitClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   jobs.SubmissionErrorKind
		target error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", kind: jobs.HTTPError, target: jobs.ErrHTTPStatus},
		{name: "bad request", status: http.StatusBadRequest, kind: jobs.HTTPError, target: jobs.ErrHTTPStatus},
		{name: "not json", status: http.StatusOK, body: "<html>", kind: jobs.MalformedResponse, target: jobs.ErrMalformedResponse},
		{name: "missing task id", status: http.StatusOK, body: `{"status":"queued"}`, kind: jobs.MalformedResponse, target: jobs.ErrMalformedResponse},
		{name: "blank task id", status: http.StatusOK, body: `{"task_id":"  "}`, kind: jobs.MalformedResponse, target: jobs.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := jobs.NewSubmitter(client, nil).Submit(context.Background(), jobs.Request{Source: "BV1"})
			var subErr *jobs.SubmissionError
			if !errors.As(err, &subErr) {
				t.Fatalf("expected SubmissionError, got %v", err)
			}
			if subErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, subErr.Kind)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v to match %v", err, tt.target)
			}
			if tt.kind == jobs.HTTPError && subErr.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, subErr.StatusCode)
			}
		})
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := backend.NewClient(url, backend.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = jobs.NewSubmitter(client, nil).Submit(context.Background(), jobs.Request{Source: "BV1"})
	if !errors.Is(err, jobs.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if errors.Is(err, jobs.ErrHTTPStatus) {
		t.Fatalf("unreachable must not match http status: %v", err)
	}
}
