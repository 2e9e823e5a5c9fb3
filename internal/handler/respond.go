// Package handler implements the HTTP routes exposed to the browser.
package handler

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"portal-bff-go/internal/model"
)

// writeClient sends a canonical client response, preserving the
// upstream's status code.
func writeClient(c echo.Context, resp *model.ClientResponse) error {
	if resp.Kind == model.KindJSON {
		return c.JSON(resp.StatusCode, resp.JSON)
	}
	return c.Blob(resp.StatusCode, resp.ContentType, resp.Body)
}

// respondError terminates a request with a classified error. Anything
// that is not a *model.Error is logged and collapsed into the generic
// internal error so no detail leaks.
func respondError(c echo.Context, logger *slog.Logger, err error) error {
	var me *model.Error
	if !errors.As(err, &me) {
		logger.Error("unclassified error",
			"err", err,
			"path", c.Request().URL.Path,
		)
		me = model.ErrInternal()
	}

	body := map[string]any{"message": me.Message}
	if me.Kind == model.KindUpstreamUnavailable {
		body["reason"] = model.ReasonUpstreamUnavailable
	}
	return c.JSON(me.Status, body)
}

// upstreamMessage extracts the message field from an upstream JSON
// document, falling back when absent.
func upstreamMessage(resp *model.ClientResponse, fallback string) string {
	if doc, ok := resp.JSON.(map[string]any); ok {
		if msg, ok := doc["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}
