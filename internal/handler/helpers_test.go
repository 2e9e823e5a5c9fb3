package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/forward"
	"portal-bff-go/internal/session"
	"portal-bff-go/internal/upstream"
)

const testSecret = "change_me_to_a_long_random_secret_32"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig points all three upstreams at baseURL. Dev mode short-
// circuits upstream calls entirely.
func testConfig(devMode bool, baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Upstreams.AuthURL = baseURL
	cfg.Upstreams.PaymentsURL = baseURL
	cfg.Upstreams.KYCURL = baseURL
	cfg.Upstreams.TimeoutSeconds = 10
	cfg.Upstreams.IdleConnections = 10
	cfg.Auth.CookieName = "nl_auth"
	cfg.Auth.SigningSecret = testSecret
	cfg.Auth.DevMode = devMode
	return cfg
}

// newServer builds an Echo instance with all routes registered against
// the given config.
func newServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	logger := discardLogger()
	client := upstream.NewClient(cfg, logger, nil)
	resolver, err := upstream.NewResolver(cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	store := session.NewStore(cfg)
	fwd := forward.New(client, resolver, store, cfg, logger)

	auth := NewAuthHandler(fwd, store, cfg, logger)
	kyc := NewKYCHandler(fwd, store, cfg, logger)
	payments := NewPaymentsHandler(fwd, store, cfg, logger)
	health := NewHealthHandler(cfg, "test")

	e := echo.New()
	RegisterRoutes(e, auth, kyc, payments, health)
	return e
}

// withAuthCookie attaches a session credential to the request.
func withAuthCookie(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "nl_auth", Value: "tok123"})
	return req
}

// clearedCookie returns the nl_auth cookie from the response if it was
// set, or nil.
func responseCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == "nl_auth" {
			return ck
		}
	}
	return nil
}
