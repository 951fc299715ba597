// Package backend is the HTTP client for the local processing service.
//
// It speaks the three JSON endpoints the job lifecycle needs: the preset
// catalogue, job creation, and job status. Responses are decoded into typed
// payloads; non-200 replies surface as *StatusError and transport failures can
// be recognized with IsUnreachable so callers can pick the right degradation
// path. Every request carries an X-Request-ID header for log correlation.
package backend
