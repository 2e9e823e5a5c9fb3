package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/forward"
	"portal-bff-go/internal/model"
	"portal-bff-go/internal/session"
	"portal-bff-go/internal/sign"
)

// PaymentsHandler serves the payment-intent route.
type PaymentsHandler struct {
	forwarder *forward.Forwarder
	sessions  *session.Store
	cfg       *config.Config
	logger    *slog.Logger
}

// NewPaymentsHandler creates a PaymentsHandler.
func NewPaymentsHandler(f *forward.Forwarder, s *session.Store, cfg *config.Config, logger *slog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		forwarder: f,
		sessions:  s,
		cfg:       cfg,
		logger:    logger.With("component", "payments_handler"),
	}
}

// CreateIntent signs the payment payload and forwards it to the
// payments upstream. Validation failures terminate before any signing
// or network dispatch. In dev mode the computed signature is returned
// alongside a synthetic intent for client-side contract testing.
func (h *PaymentsHandler) CreateIntent(c echo.Context) error {
	if h.sessions.Read(c.Request()) == "" {
		return respondError(c, h.logger, model.ErrUnauthorized())
	}

	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return respondError(c, h.logger, model.ErrValidation("Bad request"))
	}
	if !hasValue(payload["amount"]) || !hasValue(payload["currency"]) {
		return respondError(c, h.logger, model.ErrValidation("amount/currency requeridos"))
	}

	if h.cfg.Auth.DevMode {
		body, err := json.Marshal(payload)
		if err != nil {
			return respondError(c, h.logger, model.ErrInternal())
		}
		signature := sign.Sign(body, []byte(h.cfg.Auth.SigningSecret))
		return c.JSON(http.StatusOK, map[string]any{
			"intent_id": "dev_intent_" + uuid.NewString(),
			"signature": signature,
			"echo":      payload,
		})
	}

	resp, err := h.forwarder.Forward(c.Request().Context(), &model.OutboundRequest{
		Upstream: model.UpstreamPayments,
		Path:     "/intent",
		Method:   http.MethodPost,
		JSONBody: payload,
		Sign:     true,
		Inbound:  c.Request(),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(resp, "payments upstream error")
		return respondError(c, h.logger, model.ErrUpstreamRejection(resp.StatusCode, msg))
	}
	return writeClient(c, resp)
}

// hasValue applies the loose presence rules for required fields: nil,
// empty string, zero number and false all count as missing.
func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}
