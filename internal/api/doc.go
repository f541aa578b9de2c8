// Package api is the REST client for the hospital administration backend.
//
// Every collection lives under {base}/{resource}: list with GET, fetch one
// row with GET /{id}, create with POST, update with PUT /{id}, and remove
// with DELETE /{id}. Non-2xx responses carry {"error": "..."} and surface as
// *Error values. Create payloads are checked client-side with
// go-playground/validator before they are sent.
//
// Each request carries an X-Request-ID header. When the context holds a
// trace ID (see internal/logging) it is reused so log lines on both sides
// correlate.
package api
