package model

import "net/http"

// ErrorKind is the closed set of failure classes the BFF exposes.
type ErrorKind int

const (
	// KindValidation is a caller fault: missing or malformed input.
	KindValidation ErrorKind = iota
	// KindAuth is an absent or invalid credential on a protected route.
	KindAuth
	// KindUpstreamRejection preserves a non-2xx upstream status verbatim.
	KindUpstreamRejection
	// KindUpstreamUnavailable is a name-resolution or connection failure.
	KindUpstreamUnavailable
	// KindDecode is an upstream that declared JSON but sent garbage.
	KindDecode
	// KindInternal is everything else. No detail leaks to the caller.
	KindInternal
)

// ReasonUpstreamUnavailable is the stable machine-readable reason code
// attached to upstream-unavailable responses.
const ReasonUpstreamUnavailable = "upstream_unavailable"

// Error is a classified failure carrying the status code and the safe
// message returned to the browser.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrValidation builds a 400 caller-fault error.
func ErrValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// ErrUnauthorized builds a 401 with a deliberately generic message.
func ErrUnauthorized() *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

// ErrUpstreamRejection passes an upstream status and message through.
func ErrUpstreamRejection(status int, msg string) *Error {
	return &Error{Kind: KindUpstreamRejection, Status: status, Message: msg}
}

// ErrUpstreamUnavailable builds the fixed 503 for unreachable upstreams.
func ErrUpstreamUnavailable() *Error {
	return &Error{Kind: KindUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "upstream unavailable"}
}

// ErrDecode builds the 500 for upstream-contract breakage.
func ErrDecode() *Error {
	return &Error{Kind: KindDecode, Status: http.StatusInternalServerError, Message: "invalid upstream response"}
}

// ErrInternal builds the fixed 500 with no internal detail.
func ErrInternal() *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal error"}
}
