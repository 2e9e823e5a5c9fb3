// Package forward implements the core request-forwarding orchestrator:
// it assembles the outbound request, attaches the caller's credential
// and HMAC signature as requested, dispatches to the resolved upstream
// and normalizes the result.
package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/model"
	"portal-bff-go/internal/normalize"
	"portal-bff-go/internal/session"
	"portal-bff-go/internal/sign"
	"portal-bff-go/internal/upstream"
)

// defaultAccept is the permissive JSON-preferring Accept header set on
// every outbound request unless the caller overrides it.
const defaultAccept = "application/json, */*"

// Forwarder dispatches outbound requests to the backend services.
type Forwarder struct {
	client   *upstream.Client
	resolver *upstream.Resolver
	sessions *session.Store
	secret   []byte
	logger   *slog.Logger
}

// New creates a Forwarder.
func New(c *upstream.Client, r *upstream.Resolver, s *session.Store, cfg *config.Config, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		client:   c,
		resolver: r,
		sessions: s,
		secret:   []byte(cfg.Auth.SigningSecret),
		logger:   logger.With("component", "forwarder"),
	}
}

// Forward executes one outbound call and returns the canonical client
// response. The upstream's status code flows through untouched; the
// returned error, when non-nil, is always a *model.Error safe to show
// the browser.
func (f *Forwarder) Forward(ctx context.Context, req *model.OutboundRequest) (*model.ClientResponse, error) {
	header := f.composeHeaders(req)

	body, signable, err := f.serializeBody(req, header)
	if err != nil {
		f.logger.Error("serialize body", "err", err)
		return nil, model.ErrInternal()
	}

	// Signing only applies to string-serializable bodies; for raw
	// payloads the request is sent unsigned.
	if req.Sign && signable != nil {
		header.Set(model.HeaderSignature, sign.Sign(signable, f.secret))
	}

	target, err := f.resolveTarget(req)
	if err != nil {
		f.logger.Error("resolve target", "err", err, "upstream", string(req.Upstream))
		return nil, model.ErrInternal()
	}

	resp, err := f.client.Do(ctx, req.Method, target, header, body)
	if err != nil {
		return nil, f.mapTransportError(err, target)
	}
	defer func() { _ = resp.Body.Close() }()

	kind := normalize.Classify(resp.Header.Get("Content-Type"))
	out, err := normalize.Normalize(resp.StatusCode, resp.Header, resp.Body, kind)
	if err != nil {
		f.logger.Error("normalize upstream response", "err", err, "kind", kind.String())
		if errors.Is(err, normalize.ErrDecode) {
			return nil, model.ErrDecode()
		}
		return nil, model.ErrInternal()
	}
	return out, nil
}

// composeHeaders builds the outbound header set: defaults first, then
// the caller's headers (caller wins), then the bearer credential.
func (f *Forwarder) composeHeaders(req *model.OutboundRequest) http.Header {
	header := make(http.Header)
	header.Set("Accept", defaultAccept)

	for key, vals := range req.Header {
		header[http.CanonicalHeaderKey(key)] = vals
	}

	// Explicit credential wins over the cookie-held one. When neither is
	// present the request goes out unauthenticated and the upstream decides.
	cred := req.Credential
	if cred == "" {
		cred = f.sessions.Read(req.Inbound)
	}
	if cred != "" {
		header.Set("Authorization", "Bearer "+cred)
	}

	return header
}

// serializeBody returns the body reader plus, for JSON payloads, the
// exact bytes that go on the wire (the byte sequence any signature must
// cover). Raw payloads pass through untouched and suppress any JSON
// content type.
func (f *Forwarder) serializeBody(req *model.OutboundRequest, header http.Header) (io.Reader, []byte, error) {
	if req.RawBody != nil {
		if req.RawContentType != "" {
			header.Set("Content-Type", req.RawContentType)
		} else {
			header.Del("Content-Type")
		}
		return req.RawBody, nil, nil
	}

	if req.JSONBody != nil {
		b, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal JSON body: %w", err)
		}
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
		return bytes.NewReader(b), b, nil
	}

	return nil, nil, nil
}

// resolveTarget picks the final target address: an absolute URL from
// the route wins; otherwise the path is joined to the resolved base.
func (f *Forwarder) resolveTarget(req *model.OutboundRequest) (string, error) {
	if req.URL != "" {
		return req.URL, nil
	}
	base, err := f.resolver.Base(req.Upstream)
	if err != nil {
		return "", err
	}
	u := *base
	u.Path = req.Path
	return u.String(), nil
}

// mapTransportError classifies network-level failures into the two
// stable client-facing outcomes: host-unreachable (and deadline expiry)
// becomes the fixed 503, everything else the generic 500. Raw error text
// never reaches the caller.
func (f *Forwarder) mapTransportError(err error, target string) *model.Error {
	f.logger.Error("upstream dispatch failed", "err", err, "target", target)

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.ErrUpstreamUnavailable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrUpstreamUnavailable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrUpstreamUnavailable()
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Connection refused, reset, unreachable: the service is down.
		return model.ErrUpstreamUnavailable()
	}

	return model.ErrInternal()
}
