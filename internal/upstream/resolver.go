// Package upstream resolves logical service identifiers to base
// addresses and provides the pooled HTTP client used to reach them.
package upstream

import (
	"fmt"
	"net/url"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/model"
)

// Resolver maps the three recognized upstream identifiers to their
// configured base URLs. All URLs are parsed once at construction so a
// bad address fails startup, not the first request.
type Resolver struct {
	bases map[model.UpstreamID]*url.URL
}

// NewResolver parses the configured upstream addresses.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	entries := map[model.UpstreamID]string{
		model.UpstreamAuth:     cfg.Upstreams.AuthURL,
		model.UpstreamPayments: cfg.Upstreams.PaymentsURL,
		model.UpstreamKYC:      cfg.Upstreams.KYCURL,
	}

	bases := make(map[model.UpstreamID]*url.URL, len(entries))
	for id, raw := range entries {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s upstream URL: %w", id, err)
		}
		bases[id] = u
	}
	return &Resolver{bases: bases}, nil
}

// Base returns the base URL for an upstream identifier. An unrecognized
// identifier is a programming error and fails loudly rather than
// defaulting.
func (r *Resolver) Base(id model.UpstreamID) (*url.URL, error) {
	u, ok := r.bases[id]
	if !ok {
		return nil, fmt.Errorf("unknown upstream %q", id)
	}
	return u, nil
}
