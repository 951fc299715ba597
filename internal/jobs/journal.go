package jobs

import (
	"sync"
	"time"
)

const defaultJournalSize = 256

// Entry is one recorded transition.
type Entry struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	State     State     `json:"state"`
	Reported  string    `json:"reported,omitempty"`
	Attempt   int       `json:"attempt"`
	Warning   string    `json:"warning,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Journal keeps the most recent transitions of a job, numbered in arrival order.
type Journal struct {
	mu         sync.RWMutex
	nextSeq    int64
	maxEntries int
	entries    []Entry
}

// NewJournal creates a bounded in-memory journal.
func NewJournal(maxEntries int) *Journal {
	if maxEntries <= 0 {
		maxEntries = defaultJournalSize
	}
	return &Journal{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, min(maxEntries, 32)),
	}
}

// Record appends status for handle and returns the stored entry.
func (j *Journal) Record(handle Handle, status Status) Entry {
	entry := Entry{
		Timestamp: status.ObservedAt,
		JobID:     handle.JobID,
		State:     status.State,
		Reported:  status.Reported,
		Attempt:   status.Attempt,
		Error:     status.Error,
	}
	if status.Warning != nil {
		entry.Warning = status.Warning.Error()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.nextSeq++
	entry.Seq = j.nextSeq
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	j.entries = append(j.entries, entry)
	if len(j.entries) > j.maxEntries {
		trim := len(j.entries) - j.maxEntries
		j.entries = append([]Entry(nil), j.entries[trim:]...)
	}
	return entry
}

// Since returns entries with sequence strictly greater than seq.
func (j *Journal) Since(seq int64) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Entry, 0, len(j.entries))
	for _, entry := range j.entries {
		if entry.Seq > seq {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
