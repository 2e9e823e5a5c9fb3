package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/forward"
	"portal-bff-go/internal/model"
	"portal-bff-go/internal/session"
)

// AuthHandler serves the login, logout and session-check routes.
type AuthHandler struct {
	forwarder *forward.Forwarder
	sessions  *session.Store
	cfg       *config.Config
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(f *forward.Forwarder, s *session.Store, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		forwarder: f,
		sessions:  s,
		cfg:       cfg,
		logger:    logger.With("component", "auth_handler"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials with the authentication upstream and sets
// the session cookie. The raw token is never echoed in the body. In dev
// mode a locally-minted token stands in for the upstream's.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return respondError(c, h.logger, model.ErrValidation("Bad request"))
	}

	if h.cfg.Auth.DevMode {
		token, err := session.MintDevToken(req.Email, []byte(h.cfg.Auth.SigningSecret))
		if err != nil {
			h.logger.Error("mint dev token", "err", err)
			return respondError(c, h.logger, model.ErrInternal())
		}
		h.sessions.Issue(c, token)
		return c.JSON(http.StatusOK, map[string]any{
			"user":  map[string]any{"email": req.Email},
			"token": "set-in-cookie",
		})
	}

	resp, err := h.forwarder.Forward(c.Request().Context(), &model.OutboundRequest{
		Upstream: model.UpstreamAuth,
		Path:     "/login",
		Method:   http.MethodPost,
		JSONBody: map[string]string{"email": req.Email, "password": req.Password},
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(resp, "Auth failed")
		return respondError(c, h.logger, model.ErrUpstreamRejection(resp.StatusCode, msg))
	}

	doc, _ := resp.JSON.(map[string]any)
	token, _ := doc["token"].(string)
	if token == "" {
		// A 2xx login without a token breaks the auth contract.
		h.logger.Error("auth upstream returned no token")
		return respondError(c, h.logger, model.ErrDecode())
	}

	h.sessions.Issue(c, token)
	return c.JSON(http.StatusOK, map[string]any{
		"user":  doc["user"],
		"token": "set-in-cookie",
	})
}

// Logout clears the session cookie. Idempotent; always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Me reports whether the caller holds a session credential. The token
// is not revalidated against the auth upstream at this stage.
func (h *AuthHandler) Me(c echo.Context) error {
	if h.sessions.Read(c.Request()) == "" {
		return respondError(c, h.logger, model.ErrUnauthorized())
	}
	return c.JSON(http.StatusOK, map[string]any{"authenticated": true})
}
