package jobs

import (
	"strings"
	"time"
)

// Request is the job creation input. It is built right before submission and
// not modified afterwards.
type Request struct {
	// Source is the content identifier (BV id, URL, or backend-local path).
	Source string `json:"source"`
	// PresetKey names a known preset, or is empty to let the backend choose.
	PresetKey string `json:"preset_key,omitempty"`
	// CustomInstruction overrides the preset prompt when non-empty.
	CustomInstruction string `json:"custom_instruction,omitempty"`
	SkipDownload      bool   `json:"skip_download,omitempty"`
}

// Handle identifies a submitted job.
type Handle struct {
	JobID string `json:"job_id"`
}

// State is the lifecycle phase of a job.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ParseState maps a backend status string onto a State. Anything outside the
// four known values is treated as processing so unknown statuses never halt
// polling on their own.
func ParseState(raw string) State {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case StateQueued:
		return StateQueued
	case StateSucceeded:
		return StateSucceeded
	case StateFailed:
		return StateFailed
	default:
		return StateProcessing
	}
}

// Result is the payload of a succeeded job, passed to result sinks unmodified.
type Result struct {
	Summary string `json:"summary"`
}

// Status is one observed job state.
//
// Result is set only for StateSucceeded and Error only for StateFailed. When
// Warning is non-nil the poll itself failed (non-200 reply, transport error,
// undecodable body); State then repeats the last known state and the status
// is never terminal.
type Status struct {
	State      State     `json:"state"`
	Reported   string    `json:"reported,omitempty"`
	Result     *Result   `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Warning    error     `json:"-"`
	Attempt    int       `json:"attempt"`
	ObservedAt time.Time `json:"observed_at"`
}

// Terminal reports whether s ends polling.
func (s Status) Terminal() bool {
	return s.Warning == nil && s.State.Terminal()
}

// Transient reports whether s is a poll failure rather than a backend state.
func (s Status) Transient() bool {
	return s.Warning != nil
}

// Summary returns the result text, or an empty string.
func (s Status) Summary() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.Summary
}
