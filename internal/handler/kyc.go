package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"portal-bff-go/internal/config"
	"portal-bff-go/internal/forward"
	"portal-bff-go/internal/model"
	"portal-bff-go/internal/session"
)

// batchParts are the three named document parts of a full KYC
// submission: both sides of the identity document plus a selfie.
var batchParts = []string{"dni_front", "dni_back", "selfie"}

// KYCHandler serves the document-upload route.
type KYCHandler struct {
	forwarder *forward.Forwarder
	sessions  *session.Store
	cfg       *config.Config
	logger    *slog.Logger
}

// NewKYCHandler creates a KYCHandler.
func NewKYCHandler(f *forward.Forwarder, s *session.Store, cfg *config.Config, logger *slog.Logger) *KYCHandler {
	return &KYCHandler{
		forwarder: f,
		sessions:  s,
		cfg:       cfg,
		logger:    logger.With("component", "kyc_handler"),
	}
}

// Upload forwards KYC documents to the KYC upstream. A form carrying
// all three named document parts is treated as a batch: the three
// uploads are dispatched concurrently and the call succeeds only if
// every one of them does. Otherwise a single "file" part is required.
func (h *KYCHandler) Upload(c echo.Context) error {
	if h.sessions.Read(c.Request()) == "" {
		return respondError(c, h.logger, model.ErrUnauthorized())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, h.logger, model.ErrValidation("Bad request"))
	}

	if hasBatchParts(form) {
		return h.uploadBatch(c, form)
	}

	fh := firstFile(form, "file")
	if fh == nil {
		return respondError(c, h.logger, model.ErrValidation("file requerido"))
	}

	if h.cfg.Auth.DevMode {
		return c.JSON(http.StatusOK, map[string]any{
			"kyc_id":   "dev_kyc_" + uuid.NewString(),
			"filename": fh.Filename,
			"size":     fh.Size,
		})
	}

	body, contentType, err := fileForm(fh, fh.Filename)
	if err != nil {
		h.logger.Error("rebuild upload form", "err", err)
		return respondError(c, h.logger, model.ErrInternal())
	}

	resp, err := h.forwarder.Forward(c.Request().Context(), &model.OutboundRequest{
		Upstream:       model.UpstreamKYC,
		Path:           "/upload",
		Method:         http.MethodPost,
		RawBody:        body,
		RawContentType: contentType,
		Inbound:        c.Request(),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return writeClient(c, resp)
}

// uploadBatch dispatches the three document uploads concurrently.
// All-or-nothing: a single rejected part fails the whole group, and a
// partial success is never reported as success. There is no rollback of
// parts that made it through; the client resubmits the full set.
func (h *KYCHandler) uploadBatch(c echo.Context, form *multipart.Form) error {
	if h.cfg.Auth.DevMode {
		results := make([]map[string]any, 0, len(batchParts))
		for _, part := range batchParts {
			fh := firstFile(form, part)
			results = append(results, map[string]any{
				"part":     part,
				"kyc_id":   "dev_kyc_" + uuid.NewString(),
				"filename": fh.Filename,
				"size":     fh.Size,
			})
		}
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "results": results})
	}

	g, ctx := errgroup.WithContext(c.Request().Context())
	results := make([]any, len(batchParts))

	for i, part := range batchParts {
		i, part := i, part
		fh := firstFile(form, part)
		g.Go(func() error {
			name := part + filepath.Ext(fh.Filename)
			body, contentType, err := fileForm(fh, name)
			if err != nil {
				return fmt.Errorf("%s: %w", part, err)
			}

			resp, err := h.forwarder.Forward(ctx, &model.OutboundRequest{
				Upstream:       model.UpstreamKYC,
				Path:           "/upload",
				Method:         http.MethodPost,
				RawBody:        body,
				RawContentType: contentType,
				Inbound:        c.Request(),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", part, err)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				msg := upstreamMessage(resp, "kyc upstream error")
				return model.ErrUpstreamRejection(resp.StatusCode, fmt.Sprintf("%s: %s", part, msg))
			}
			results[i] = resp.JSON
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.logger.Error("kyc batch upload failed", "err", err)
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"ok": true, "results": results})
}

// hasBatchParts reports whether the form carries all three named
// document parts.
func hasBatchParts(form *multipart.Form) bool {
	for _, part := range batchParts {
		if firstFile(form, part) == nil {
			return false
		}
	}
	return true
}

// firstFile returns the first file header for a form field, or nil.
func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if fhs := form.File[field]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

// fileForm wraps a single uploaded file in a fresh multipart body with
// the field name "file", the shape the KYC upstream expects.
func fileForm(fh *multipart.FileHeader, filename string) (io.Reader, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = src.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("copy upload %s: %w", fh.Filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
