// Package client talks to the GophForge HTTP API.
//
// Client is the transport-agnostic contract used by the CLI; HTTPClient is
// the implementation. Non-2xx responses become *APIError values carrying the
// status code and the server's "detail" message. A 404 also matches
// ErrNotFound and a failed connection matches ErrUnavailable, so callers can
// use errors.Is.
package client
