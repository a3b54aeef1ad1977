// Package types holds the response envelopes every API handler writes.
package types

// SuccessEnvelope wraps successful payloads as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details carries field-level
// validation messages when the error allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps failures as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
