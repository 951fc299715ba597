// Package notifications delivers job completion events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Callers depend only on the small Service interface, so result
// sinks can announce finished jobs without duplicating HTTP glue.
package notifications
