package gateway_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ocrdesk/ocrdesk/internal/config"
	"github.com/ocrdesk/ocrdesk/internal/gateway"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*gateway.Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.GatewayConfig{
		APIKey:  "config-key",
		BaseURL: srv.URL,
		Model:   "glm-ocr",
		Timeout: "10s",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return gateway.New(cfg, logger), srv
}

func respond(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestRecognizeRequestShape(t *testing.T) {
	var gotAuth, gotModel, gotFile string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model string `json:"model"`
			File  string `json:"file"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		gotFile = body.File

		respond(t, w, map[string]string{"md_results": "# Heading"})
	})

	data := []byte("%PDF-1.4")
	result, err := client.Recognize(context.Background(), gateway.Request{
		Data:     data,
		MimeType: "application/pdf",
		APIKey:   "request-key",
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if result != "# Heading" {
		t.Errorf("result = %q", result)
	}
	if gotAuth != "Bearer request-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "glm-ocr" {
		t.Errorf("model = %q", gotModel)
	}

	wantFile := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
	if gotFile != wantFile {
		t.Errorf("file = %q, want %q", gotFile, wantFile)
	}
}

func TestRecognizeFallsBackToConfiguredKey(t *testing.T) {
	var gotAuth string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respond(t, w, map[string]string{"md_results": "text"})
	})

	if _, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "image/png",
	}); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if gotAuth != "Bearer config-key" {
		t.Errorf("Authorization = %q, want configured key", gotAuth)
	}
}

func TestRecognizeExtractionPriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"top level md_results",
			`{"md_results": "# Top", "data": {"md_results": "# Nested"}}`,
			"# Top",
		},
		{
			"nested md_results",
			`{"data": {"md_results": "# Nested"}}`,
			"# Nested",
		},
		{
			"layout fallback pretty printed",
			`{"layout_parsing_result": {"pages": [1]}}`,
			"{\n  \"pages\": [\n    1\n  ]\n}",
		},
		{
			"success with no content",
			`{"code": 200}`,
			"OCR completed but no Markdown content found in response.",
		},
		{
			"success msg with no content",
			`{"msg": "success"}`,
			"OCR completed but no Markdown content found in response.",
		},
		{
			"success with array data",
			`{"code": 200, "msg": "success", "data": []}`,
			"OCR completed but no Markdown content found in response.",
		},
		{
			"nested beats array noise",
			`{"data": {"md_results": "# Nested", "extra": [1, 2]}}`,
			"# Nested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			got, err := client.Recognize(context.Background(), gateway.Request{
				Data:     []byte("x"),
				MimeType: "application/pdf",
			})
			if err != nil {
				t.Fatalf("Recognize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecognizeUnexpectedFormat(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 500, "msg": "internal"}`))
	})

	_, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "application/pdf",
	})

	if !errors.Is(err, gateway.ErrUnexpectedFormat) {
		t.Fatalf("error = %v, want ErrUnexpectedFormat", err)
	}
	if !strings.Contains(err.Error(), `"msg": "internal"`) {
		t.Errorf("error should carry the raw body: %v", err)
	}
}

func TestRecognizeProviderError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	})

	_, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "application/pdf",
	})

	var statusErr *gateway.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %T, want *StatusError", err)
	}
	if statusErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", statusErr.Status)
	}
	if statusErr.Error() != "invalid api key" {
		t.Errorf("Error() = %q", statusErr.Error())
	}
}

func TestRecognizeProviderErrorNoMessage(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("gateway timeout"))
	})

	_, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "application/pdf",
	})

	var statusErr *gateway.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %T, want *StatusError", err)
	}
	if got := statusErr.Error(); got != "API request failed with status 502" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRecognizeNormalizesNewlines(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, map[string]string{"md_results": "line one\r\nline two\r\n"})
	})

	got, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	if got != "line one\nline two\n" {
		t.Errorf("result = %q", got)
	}
}

func TestRecognizeEndpointOverride(t *testing.T) {
	called := false
	override := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"md_results": "from override"}`))
	}))
	defer override.Close()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("configured endpoint should not be called")
	})

	got, err := client.Recognize(context.Background(), gateway.Request{
		Data:     []byte("x"),
		MimeType: "application/pdf",
		Endpoint: override.URL,
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !called {
		t.Error("override endpoint not called")
	}
	if got != "from override" {
		t.Errorf("result = %q", got)
	}
}
