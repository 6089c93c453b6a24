// Package transport issues JSON HTTP requests on behalf of the playground
// client and hands back the raw status code and body.
//
// It is stateless and never retries: a request either produces a Response
// (any status) or a transport-level error when no response was received.
// Timeouts come from the underlying http.Client and surface as ordinary
// transport errors. Each request carries an X-Request-ID header taken from
// the context (or generated) so server logs can be correlated with ours.
package transport
