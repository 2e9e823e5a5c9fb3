// Package normalize converts raw upstream responses into the canonical
// client-facing shapes. Classification is driven entirely by the
// declared Content-Type header; there is no content sniffing for
// declared types. Upstreams that omit or mislabel the header get an
// ordered best-effort fallback: JSON first, then verbatim text.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"portal-bff-go/internal/model"
)

// ErrDecode marks an upstream that declared JSON but sent something
// that does not parse.
var ErrDecode = errors.New("upstream declared JSON but body is not valid JSON")

// Fallback content types applied when an upstream declares nothing
// usable for the classification it matched.
const (
	fallbackText     = "text/plain; charset=utf-8"
	fallbackArchive  = "application/zip"
	fallbackDocument = "application/pdf"
	fallbackBinary   = "application/octet-stream"
	contentTypeJSON  = "application/json"
)

// Classify maps a declared content type onto one of the six response
// kinds. Total: every string, including the empty one, yields exactly
// one kind. Matching is case-insensitive substring matching; an absent
// header yields KindUnknown, a present but unmapped one falls back to
// opaque binary.
func Classify(contentType string) model.Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case ct == "":
		return model.KindUnknown
	case strings.Contains(ct, "json"):
		return model.KindJSON
	case strings.Contains(ct, "zip"), strings.Contains(ct, "gzip"), strings.Contains(ct, "tar"):
		return model.KindArchive
	case strings.Contains(ct, "pdf"):
		return model.KindDocument
	case strings.Contains(ct, "text"):
		return model.KindText
	default:
		return model.KindBinary
	}
}

// Normalize reads the full upstream body and reshapes it according to
// the classification. The body is always drained, and the only error
// paths are a failed body read and genuine decode corruption on the
// declared-JSON path; an unrecognized content type is never an error.
func Normalize(status int, header http.Header, body io.Reader, kind model.Kind) (*model.ClientResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	declared := header.Get("Content-Type")

	switch kind {
	case model.KindJSON:
		doc, err := decodeJSON(data)
		if err != nil {
			// Contract breakage, not caller fault.
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &model.ClientResponse{StatusCode: status, ContentType: contentTypeJSON, Kind: model.KindJSON, JSON: doc}, nil

	case model.KindText:
		return passthrough(status, declared, fallbackText, model.KindText, data), nil
	case model.KindArchive:
		return passthrough(status, declared, fallbackArchive, model.KindArchive, data), nil
	case model.KindDocument:
		return passthrough(status, declared, fallbackDocument, model.KindDocument, data), nil
	case model.KindBinary:
		return passthrough(status, declared, fallbackBinary, model.KindBinary, data), nil

	default: // KindUnknown
		return normalizeUnknown(status, data), nil
	}
}

// passthrough wraps opaque bytes, keeping the declared content type or
// substituting the per-kind fallback.
func passthrough(status int, declared, fallback string, kind model.Kind, data []byte) *model.ClientResponse {
	ct := declared
	if ct == "" {
		ct = fallback
	}
	return &model.ClientResponse{StatusCode: status, ContentType: ct, Kind: kind, Body: data}
}

// normalizeUnknown handles responses with no usable content type.
// A no-content status or empty body becomes the canonical empty-success
// document; anything else is tried as JSON first, then passed through
// as verbatim text. The structured-then-raw order is the contract for
// upstreams that omit or mislabel their headers.
func normalizeUnknown(status int, data []byte) *model.ClientResponse {
	if status == http.StatusNoContent || len(data) == 0 {
		return &model.ClientResponse{StatusCode: status, ContentType: contentTypeJSON, Kind: model.KindJSON, JSON: map[string]any{}}
	}

	if gjson.ValidBytes(data) {
		if doc, err := decodeJSON(data); err == nil {
			return &model.ClientResponse{StatusCode: status, ContentType: contentTypeJSON, Kind: model.KindJSON, JSON: doc}
		}
	}

	return &model.ClientResponse{StatusCode: status, ContentType: fallbackText, Kind: model.KindText, Body: data}
}

// decodeJSON parses a complete JSON document. An empty body decodes to
// the empty object rather than failing: "nothing" is not corruption.
func decodeJSON(data []byte) (any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
