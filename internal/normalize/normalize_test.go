package normalize

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"portal-bff-go/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        model.Kind
	}{
		{"json", "application/json", model.KindJSON},
		{"json with charset", "application/json; charset=utf-8", model.KindJSON},
		{"vendor json", "application/problem+json", model.KindJSON},
		{"uppercase", "APPLICATION/JSON", model.KindJSON},
		{"plain text", "text/plain", model.KindText},
		{"html", "text/html; charset=utf-8", model.KindText},
		{"zip", "application/zip", model.KindArchive},
		{"gzip", "application/x-gzip", model.KindArchive},
		{"tar", "application/x-tar", model.KindArchive},
		{"pdf", "application/pdf", model.KindDocument},
		{"octet stream", "application/octet-stream", model.KindBinary},
		{"image falls back to binary", "image/png", model.KindBinary},
		{"gibberish falls back to binary", "x-totally/made-up", model.KindBinary},
		{"absent", "", model.KindUnknown},
		{"whitespace only", "   ", model.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.contentType); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func headerWith(contentType string) http.Header {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

func TestNormalize_JSON(t *testing.T) {
	body := strings.NewReader(`{"intent_id":"abc","amount":100}`)

	resp, err := Normalize(http.StatusOK, headerWith("application/json"), body, model.KindJSON)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	doc, ok := resp.JSON.(map[string]any)
	if !ok {
		t.Fatalf("JSON type = %T, want map", resp.JSON)
	}
	if doc["intent_id"] != "abc" {
		t.Errorf("intent_id = %v, want abc", doc["intent_id"])
	}
	if doc["amount"] != float64(100) {
		t.Errorf("amount = %v, want 100", doc["amount"])
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestNormalize_JSONDecodeError(t *testing.T) {
	body := strings.NewReader(`{"broken":`)

	_, err := Normalize(http.StatusOK, headerWith("application/json"), body, model.KindJSON)
	if err == nil {
		t.Fatal("Normalize() error = nil, want decode error")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestNormalize_DeclaredJSONEmptyBody(t *testing.T) {
	resp, err := Normalize(http.StatusOK, headerWith("application/json"), strings.NewReader(""), model.KindJSON)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	doc, ok := resp.JSON.(map[string]any)
	if !ok || len(doc) != 0 {
		t.Errorf("JSON = %v, want empty object", resp.JSON)
	}
}

func TestNormalize_PassthroughKinds(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		kind     model.Kind
		wantCT   string
	}{
		{"text keeps declared", "text/html", model.KindText, "text/html"},
		{"text fallback", "", model.KindText, "text/plain; charset=utf-8"},
		{"archive keeps declared", "application/x-gzip", model.KindArchive, "application/x-gzip"},
		{"archive fallback", "", model.KindArchive, "application/zip"},
		{"document fallback", "", model.KindDocument, "application/pdf"},
		{"binary fallback", "", model.KindBinary, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Normalize(http.StatusOK, headerWith(tt.declared), strings.NewReader("payload-bytes"), tt.kind)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if resp.ContentType != tt.wantCT {
				t.Errorf("ContentType = %q, want %q", resp.ContentType, tt.wantCT)
			}
			if string(resp.Body) != "payload-bytes" {
				t.Errorf("Body = %q, want passthrough bytes", resp.Body)
			}
			if resp.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", resp.Kind, tt.kind)
			}
		})
	}
}

func TestNormalize_UnknownNoContent(t *testing.T) {
	resp, err := Normalize(http.StatusNoContent, headerWith(""), strings.NewReader(""), model.KindUnknown)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	doc, ok := resp.JSON.(map[string]any)
	if !ok || len(doc) != 0 {
		t.Errorf("JSON = %v, want canonical empty object", resp.JSON)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("StatusCode = %d, want 204 preserved", resp.StatusCode)
	}
}

// Upstreams that omit the content type get the structured-then-raw
// fallback: JSON decoding first, verbatim text second.
func TestNormalize_UnknownFallbackOrder(t *testing.T) {
	t.Run("valid JSON wins", func(t *testing.T) {
		resp, err := Normalize(http.StatusOK, headerWith(""), strings.NewReader(`{"ok":true}`), model.KindUnknown)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		doc, ok := resp.JSON.(map[string]any)
		if !ok {
			t.Fatalf("JSON type = %T, want map", resp.JSON)
		}
		if doc["ok"] != true {
			t.Errorf("ok = %v, want true", doc["ok"])
		}
		if resp.Kind != model.KindJSON {
			t.Errorf("Kind = %v, want KindJSON", resp.Kind)
		}
	})

	t.Run("non-JSON falls back to text", func(t *testing.T) {
		resp, err := Normalize(http.StatusOK, headerWith(""), strings.NewReader("plain words"), model.KindUnknown)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if resp.Kind != model.KindText {
			t.Errorf("Kind = %v, want KindText", resp.Kind)
		}
		if string(resp.Body) != "plain words" {
			t.Errorf("Body = %q, want verbatim text", resp.Body)
		}
	})
}

// Classification plus normalization never errors for any content type
// except the declared-JSON corruption path.
func TestNormalize_TotalOverContentTypes(t *testing.T) {
	contentTypes := []string{
		"", "application/json", "text/csv", "application/zip", "application/pdf",
		"image/jpeg", "application/octet-stream", "nonsense", "x/y; z=1",
	}

	for _, ct := range contentTypes {
		kind := Classify(ct)
		body := "not json at all"
		if kind == model.KindJSON {
			body = `{"fine": 1}`
		}
		if _, err := Normalize(http.StatusOK, headerWith(ct), strings.NewReader(body), kind); err != nil {
			t.Errorf("Normalize with content type %q: unexpected error %v", ct, err)
		}
	}
}
