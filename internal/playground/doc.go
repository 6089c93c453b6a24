// Package playground is the typed client for the remote execution service.
//
// It exposes the three service operations (create a job, fetch a page of
// output from an offset, list language versions), encodes request payloads,
// and decodes responses strictly: a missing field, a malformed body, or an
// unexpected status always yields an *Error, never a partially filled value.
// The client never retries; callers decide whether a failure warrants another
// attempt (see Retryable).
package playground
