package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"bilisum/internal/backend"
)

const (
	DefaultPresetsBody = `[{"key":"bilibili_summary","label":"Video summary"},{"key":"meeting_summary","label":"Meeting minutes"},{"key":"translation","label":"Translation"}]`
	DefaultTaskID      = "task-1"
	DefaultSummary     = "summary text"
)

// Reply is one scripted HTTP response.
type Reply struct {
	Code int
	Body string
}

// OK returns a 200 reply with body.
func OK(body string) Reply {
	return Reply{Code: http.StatusOK, Body: body}
}

// FakeBackend is an httptest server speaking the processing backend API.
// Status replies are consumed in order; the last one repeats.
type FakeBackend struct {
	URL string

	mu          sync.Mutex
	presets     Reply
	process     Reply
	statuses    []Reply
	processed   []backend.ProcessRequest
	statusCalls map[string]int
}

// NewFakeBackend starts a fake backend that offers the default presets,
// accepts every job as DefaultTaskID, and reports it succeeded with
// DefaultSummary.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		presets:     OK(DefaultPresetsBody),
		process:     OK(`{"task_id":"` + DefaultTaskID + `"}`),
		statuses:    []Reply{OK(`{"status":"succeeded","result":{"summary":"` + DefaultSummary + `"}}`)},
		statusCalls: map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /presets", fb.handlePresets)
	mux.HandleFunc("POST /process", fb.handleProcess)
	mux.HandleFunc("GET /status/{id}", fb.handleStatus)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	fb.URL = srv.URL
	return fb
}

// SetPresets scripts the /presets reply.
func (f *FakeBackend) SetPresets(reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presets = reply
}

// SetProcess scripts the /process reply.
func (f *FakeBackend) SetProcess(reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.process = reply
}

// SetStatuses scripts the /status replies.
func (f *FakeBackend) SetStatuses(replies ...Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append([]Reply(nil), replies...)
}

// Processed returns the job requests received so far.
func (f *FakeBackend) Processed() []backend.ProcessRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.ProcessRequest(nil), f.processed...)
}

// StatusCalls returns how many times the status of id was queried.
func (f *FakeBackend) StatusCalls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls[id]
}

func (f *FakeBackend) handlePresets(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	reply := f.presets
	f.mu.Unlock()
	write(w, reply)
}

func (f *FakeBackend) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req backend.ProcessRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.processed = append(f.processed, req)
	reply := f.process
	f.mu.Unlock()
	write(w, reply)
}

func (f *FakeBackend) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	f.mu.Lock()
	f.statusCalls[id]++
	reply := Reply{Code: http.StatusNotFound, Body: `{"detail":"unknown task"}`}
	if len(f.statuses) > 0 {
		reply = f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
	}
	f.mu.Unlock()
	write(w, reply)
}

func write(w http.ResponseWriter, reply Reply) {
	code := reply.Code
	if code == 0 {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, reply.Body)
}
