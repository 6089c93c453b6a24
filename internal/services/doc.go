// Package services defines shared utilities consumed by the playground client,
// the execution controller, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp remote job IDs, controller session IDs, and
//     correlation identifiers for logging and request tracing.
//
// Use these helpers when wiring new request paths so every log line emitted
// for a run can be tied back to the job and session that produced it.
package services
