package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "meeting  notes", "meeting_notes"},
		{"separators", "a/b\\c:d*e", "a-b-c-d-e"},
		{"removed", `what?"<x>|`, "whatx"},
		{"blank", "   ", ""},
		{"hidden", ".env\n", "env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mixed case", "Task-ABC_1", "task-abc_1"},
		{"punctuation", "a.b c", "a_b_c"},
		{"empty", "", "unknown"},
		{"only punctuation", "...", "unknown"},
		{"non ascii", "任务7", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.in); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSourceSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bv id", "BV1xx411c7mD", "BV1xx411c7mD"},
		{"lowercase bv id", "bv1xx411c7mD", "BV1xx411c7mD"},
		{"video url", "https://www.bilibili.com/video/BV1xx411c7mD/?p=2", "BV1xx411c7mD"},
		{"plain url", "https://example.com/media/talk.mp3", "talk"},
		{"local path", "/data/audio/weekly sync.m4a", "weekly_sync"},
		{"windows path", `C:\rec\standup.wav`, "standup"},
		{"blank", "  ", "unknown"},
		{"root", "/", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourceSlug(tt.in); got != tt.want {
				t.Errorf("SourceSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
