// Package session runs one job from preset selection to delivered summary.
//
// A Session wires a preset source, a submitter and a poller together as plain
// sequential steps: validate the preset, submit, poll until terminal, deliver
// the summary. Every observable step is reported as an Update to an injected
// StatusSink, and each job is controlled by the single jobs.Token returned
// from Start. Only one job is tracked per Session, and AcquireLock extends
// that guarantee across processes.
package session
