package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bilisum/internal/presets"
	"bilisum/internal/session"
)

// resolvePreset returns the requested preset key, or the selection default
// when none was given. Unknown keys fail with session.ErrUnknownPreset.
func resolvePreset(selection presets.Selection, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return selection.Default, nil
	}
	if !selection.Contains(requested) {
		return "", fmt.Errorf("%w %q (available: %s)", session.ErrUnknownPreset, requested, strings.Join(selection.Keys(), ", "))
	}
	return requested, nil
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
