package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"bilisum/internal/jobs"
	"bilisum/internal/presets"
	"bilisum/internal/session"
	"bilisum/internal/testsupport"
)

func TestPresetsCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"presets"}, env.configPath)
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	requireContains(t, out, "bilibili_summary")
	requireContains(t, out, "Meeting minutes")
	requireContains(t, out, "yes")
	if strings.Contains(out, "built-in presets") {
		t.Fatalf("unexpected fallback caption:\n%s", out)
	}
}

func TestPresetsCommandFallsBack(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetPresets(testsupport.Reply{Code: http.StatusInternalServerError})

	out, _, err := runCLI(t, []string{"presets", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("presets --json: %v", err)
	}
	var selection presets.Selection
	if err := json.Unmarshal([]byte(out), &selection); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !selection.Degraded || selection.Default != "bilibili_summary" || len(selection.Presets) != 3 {
		t.Fatalf("unexpected selection %+v", selection)
	}
}

func TestRunCommandPrintsAndSavesSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetStatuses(
		testsupport.OK(`{"status":"processing"}`),
		testsupport.OK(`{"status":"succeeded","result":{"summary":"X"}}`),
	)

	out, errOut, err := runCLI(t, []string{"run", "BV1xx411c7mD", "--prompt", "  focus on numbers "}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, errOut)
	}
	if out != "X\n" {
		t.Fatalf("stdout = %q, want summary only", out)
	}
	requireContains(t, errOut, "submitting job")
	requireContains(t, errOut, "done!")

	saved := filepath.Join(env.cfg.Output.Dir, "BV1xx411c7mD_"+testsupport.DefaultTaskID+"_summary.txt")
	requireContains(t, errOut, saved)
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved summary: %v", err)
	}
	if string(data) != "X\n" {
		t.Fatalf("unexpected saved summary %q", data)
	}

	processed := env.backend.Processed()
	if len(processed) != 1 {
		t.Fatalf("expected one submission, got %d", len(processed))
	}
	if processed[0].PresetName != "bilibili_summary" || processed[0].CustomPrompt != "focus on numbers" {
		t.Fatalf("unexpected submission %+v", processed[0])
	}
}

func TestRunCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "BV1xx411c7mD", "--preset", "translation", "--json", "--no-file"}, env.configPath)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var report jobReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if report.State != jobs.StateSucceeded || report.Summary != testsupport.DefaultSummary || report.Preset != "translation" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.SavedTo != "" {
		t.Fatalf("--no-file should not save, got %q", report.SavedTo)
	}
	if len(report.Transitions) < 2 || report.Transitions[0].State != jobs.StateQueued {
		t.Fatalf("unexpected transitions %+v", report.Transitions)
	}
	if entries, _ := os.ReadDir(env.cfg.Output.Dir); len(entries) != 0 {
		t.Fatalf("expected no saved files, found %d", len(entries))
	}
}

func TestRunCommandFailedJob(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetStatuses(testsupport.OK(`{"status":"failed","error":"decode error"}`))

	out, errOut, err := runCLI(t, []string{"run", "BV1xx411c7mD"}, env.configPath)
	if !errors.Is(err, session.ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no stdout, got %q", out)
	}
	requireContains(t, errOut, "job failed: decode error")
}

func TestRunCommandRejectsUnknownPreset(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "BV1xx411c7mD", "--preset", "poetry"}, env.configPath)
	if !errors.Is(err, session.ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if len(env.backend.Processed()) != 0 {
		t.Fatal("unknown preset must not be submitted")
	}
}

func TestRunCommandTimeout(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetStatuses(testsupport.OK(`{"status":"processing"}`))

	_, _, err := runCLI(t, []string{"run", "BV1xx411c7mD", "--timeout", "200ms"}, env.configPath)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	requireContains(t, err.Error(), "bilisum watch "+testsupport.DefaultTaskID)
}

func TestRunCommandRespectsLock(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := session.AcquireLock(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"run", "BV1xx411c7mD"}, env.configPath)
	if !errors.Is(err, session.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestSubmitCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"submit", "BV1xx411c7mD", "--preset", "meeting_summary", "--skip-download"}, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if strings.TrimSpace(out) != testsupport.DefaultTaskID {
		t.Fatalf("stdout = %q, want task id", out)
	}
	processed := env.backend.Processed()
	if len(processed) != 1 || !processed[0].SkipDownload || processed[0].PresetName != "meeting_summary" {
		t.Fatalf("unexpected submissions %+v", processed)
	}
	if env.backend.StatusCalls(testsupport.DefaultTaskID) != 0 {
		t.Fatal("submit must not poll")
	}
}

func TestSubmitCommandMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"submit", "  "}, env.configPath)
	if !errors.Is(err, jobs.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
	if len(env.backend.Processed()) != 0 {
		t.Fatal("missing source must not reach the backend")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "abc"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Task abc:")
	requireContains(t, out, "[OK] Succeeded")
	requireContains(t, out, testsupport.DefaultSummary)
	if env.backend.StatusCalls("abc") != 1 {
		t.Fatalf("expected a single status query")
	}
}

func TestStatusCommandReportsHTTPError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetStatuses(testsupport.Reply{Code: http.StatusNotFound, Body: `{"detail":"Task not found"}`})

	_, _, err := runCLI(t, []string{"status", "missing"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestWatchCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutFiles())

	out, _, err := runCLI(t, []string{"watch", "abc"}, env.configPath)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if out != testsupport.DefaultSummary+"\n" {
		t.Fatalf("stdout = %q", out)
	}
	if len(env.backend.Processed()) != 0 {
		t.Fatal("watch must not submit")
	}
}

func TestTestNotifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")

	var hits atomic.Int32
	ntfy := newNtfyServer(t, &hits)
	env = setupCLITestEnv(t, testsupport.WithNtfyTopic(ntfy))
	out, _, err = runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if hits.Load() != 1 {
		t.Fatalf("expected one ntfy request, got %d", hits.Load())
	}
}
