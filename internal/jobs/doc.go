// Package jobs implements the client side of the backend job lifecycle.
//
// A Submitter turns a Request into a Handle (or a SubmissionError whose kind
// tells the caller exactly what went wrong). A Poller then queries the job on a
// fixed start-to-start cadence, translating backend replies into Status
// transitions until the job reaches Succeeded or Failed, or the caller cancels
// the returned Token. Poll failures never stop polling; they surface as
// transient warning statuses.
//
// Journal keeps a bounded, sequence-numbered record of transitions and Tracker
// enforces that only one job is tracked at a time.
package jobs
