// Package execution owns the lifecycle of one remote program run.
//
// A Controller submits source code, polls the job's output at a steady
// cadence, accumulates the transcript in arrival order, and records the exit
// code when the service reports one. Each submission runs as a single
// cancellable task keyed by a generation number and job identifier, so late
// responses from an abandoned job are dropped instead of leaking into the
// current transcript. Callers observe progress through Snapshot, Wait, or an
// observer callback. Submit, Retry, and Dismiss return without waiting on
// the network.
package execution
