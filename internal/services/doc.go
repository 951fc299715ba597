// Package services defines shared utilities consumed by the backend client,
// the job lifecycle components, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp task IDs, preset keys, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can decide
//     whether a failure is transient (poll again) or a rejection of the
//     current action.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the client.
package services
