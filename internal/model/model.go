// Package model defines shared types for the BFF.
package model

import (
	"io"
	"net/http"
)

// UpstreamID identifies one of the configured backend services.
type UpstreamID string

// Recognized upstream identifiers. Anything else is a programming error
// and is rejected loudly by the resolver.
const (
	UpstreamAuth     UpstreamID = "auth"
	UpstreamPayments UpstreamID = "payments"
	UpstreamKYC      UpstreamID = "kyc"
)

// HeaderSignature carries the HMAC signature of the request body.
const HeaderSignature = "X-Signature"

// Kind classifies an upstream response body by its declared content type.
type Kind int

// The six response classifications. Classification is total: every
// content-type string, including the empty one, maps to exactly one Kind.
const (
	KindUnknown Kind = iota
	KindJSON
	KindText
	KindArchive
	KindDocument
	KindBinary
)

// String returns the classification name for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	case KindArchive:
		return "archive"
	case KindDocument:
		return "document"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// OutboundRequest describes a single request to be forwarded upstream.
// Built fresh per call; never reused.
type OutboundRequest struct {
	// Upstream selects the configured base address. Ignored when URL is set.
	Upstream UpstreamID
	// URL, when non-empty, is used verbatim as the absolute target.
	URL    string
	Path   string
	Method string
	// Header entries overlay the defaults set by the forwarder.
	Header http.Header

	// JSONBody is serialized once to canonical JSON. Mutually exclusive
	// with RawBody.
	JSONBody any
	// RawBody passes through untouched (multipart forms, raw bytes).
	RawBody        io.Reader
	RawContentType string

	// Credential, when set, is used verbatim as the bearer value and wins
	// over any cookie-held credential.
	Credential string
	// Inbound is the browser request whose cookie jar may hold the
	// session credential. May be nil for unauthenticated calls.
	Inbound *http.Request

	// Sign requests an HMAC signature over the serialized JSON body.
	// A no-op for raw bodies.
	Sign bool
}

// ClientResponse is the canonical shape every route handler returns to
// the browser.
type ClientResponse struct {
	StatusCode  int
	ContentType string
	Kind        Kind
	// JSON holds the decoded document when Kind is KindJSON.
	JSON any
	// Body holds the opaque bytes for every other classification.
	Body []byte
}
