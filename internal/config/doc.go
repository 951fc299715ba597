// Package config loads, normalizes, and validates bilisum configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BILISUM_BASE_URL. The Config type centralizes every knob the CLI and the job
// lifecycle components need: the backend address, the poll cadence, where
// finished summaries land, and how logs are written.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, canonical log formats, and clear validation errors.
package config
