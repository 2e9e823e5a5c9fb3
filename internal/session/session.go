// Package session reads and writes the opaque session credential held
// in an HTTP-only cookie. The credential's internals are opaque here;
// only the login flow knows what a token contains.
package session

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/config"
)

// Store accesses the single named credential cookie. Stateless; the
// credential lives entirely in the browser's cookie jar.
type Store struct {
	name   string
	domain string
	secure bool
}

// NewStore creates a Store from the cookie settings in config.
func NewStore(cfg *config.Config) *Store {
	return &Store{
		name:   cfg.Auth.CookieName,
		domain: cfg.Auth.CookieDomain,
		secure: cfg.Auth.CookieSecure,
	}
}

// Read returns the credential from the request's cookie jar, or ""
// when absent. Never errors.
func (s *Store) Read(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(s.name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Issue sets the credential cookie on the outgoing response: HTTP-only,
// SameSite=Lax, path /, 8-hour max-age.
func (s *Store) Issue(c echo.Context, token string) {
	c.SetCookie(s.cookie(token, config.CookieMaxAge))
}

// Clear expires the credential cookie immediately. Idempotent: clearing
// an absent cookie is fine.
func (s *Store) Clear(c echo.Context) {
	c.SetCookie(s.cookie("", -1))
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
