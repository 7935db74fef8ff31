package practicum

import (
	"fmt"
	"net/http"
)

// EndpointError reports a transport-level failure reaching the API
// (DNS, connection refused, timeout).
type EndpointError struct {
	URL string
	Err error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("endpoint %s unavailable: %v", e.URL, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// StatusCodeError reports a non-200 HTTP response from the API.
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected API status code %d %s", e.Code, http.StatusText(e.Code))
}

// DecodeError reports a response body that is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("API response is not valid JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmptyResponseError reports a payload that carried no data at all.
// Callers may treat it as "nothing to do" rather than a malformed payload.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string { return "API response carries no data" }

// ResponseTypeError reports a payload whose shape does not match the API
// documentation (wrong top-level type, homeworks not a list, ...).
type ResponseTypeError struct {
	Msg string
}

func (e *ResponseTypeError) Error() string { return "malformed API response: " + e.Msg }

// KeyResponseError reports an expected key absent from the payload.
type KeyResponseError struct {
	Key string
}

func (e *KeyResponseError) Error() string {
	return fmt.Sprintf("API response misses expected key %q", e.Key)
}

// MissingFieldError reports a homework record without a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("homework record misses required field %q", e.Field)
}

// ParseStatusError reports a homework record whose status could not be
// extracted at all (the "status" key is absent).
type ParseStatusError struct {
	Msg string
}

func (e *ParseStatusError) Error() string { return "status parse failed: " + e.Msg }

// UnknownStatusError reports a status value outside the documented set.
// It is an error by contract: an unrecognized status must never be
// silently dropped or substituted with a default verdict.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown homework status %q", e.Status)
}
