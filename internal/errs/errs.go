// Package errs defines the error shapes the API returns.
//
// Handlers and services return *HTTPError values; the global error
// handler serializes them so every failure reaches the client as
//
//	{ "error": "...", "code": "...", "status": 404 }
//
// with optional field-level details.
package errs
