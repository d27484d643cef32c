package internal

import "errors"

// ErrNotSupported is returned by payment-method operations this gateway
// does not implement (capture, refund, void, recurring).
var ErrNotSupported = errors.New("operation not supported")

// ConfigError aborts a checkout attempt before any network call: neither
// flow enabled, missing secret key, or no recognised customer payment choice.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "gateway configuration: " + e.Reason
}

// ValidationError marks text that cannot be represented in the gateway code
// page. Characters are never silently dropped or substituted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "payload validation: " + e.Reason
}

// FormatError marks malformed Base64, URL escaping or response text. At the
// response-interpretation boundary it downgrades to a failed attempt instead
// of aborting.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "format: " + e.Reason + ": " + e.Err.Error()
	}
	return "format: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// TransportError marks a network failure or timeout on the direct call. It is
// distinct from an empty gateway response, which is a valid outcome.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "gateway transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
