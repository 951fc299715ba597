// Package main hosts the bilisum CLI entrypoint and command graph.
//
// The Cobra-based command tree lists presets, submits summary jobs to the local
// processing backend, and follows them until the summary is ready. Status
// lines go to stderr so stdout carries only results: the summary text, a task
// id, or JSON when requested.
//
// Keep this package lean: the job lifecycle lives in internal/session and the
// packages beneath it; commands here only resolve configuration, wire sinks,
// and render output.
package main
