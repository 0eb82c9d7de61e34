package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewHTTP(t *testing.T) {
	t.Run("creates http transport with address", func(t *testing.T) {
		transport := NewHTTP(":8080")

		if transport.Addr() != ":8080" {
			t.Errorf("Addr() = %q, want %q", transport.Addr(), ":8080")
		}
	})

	t.Run("creates http transport with options", func(t *testing.T) {
		transport := NewHTTP(":8080",
			WithReadTimeout(5*time.Second),
			WithWriteTimeout(10*time.Second),
			WithShutdownTimeout(time.Second),
			WithMaxBodyBytes(64),
		)

		if transport.readTimeout != 5*time.Second {
			t.Errorf("readTimeout = %v", transport.readTimeout)
		}
		if transport.writeTimeout != 10*time.Second {
			t.Errorf("writeTimeout = %v", transport.writeTimeout)
		}
		if transport.shutdownTimeout != time.Second || transport.maxBodyBytes != 64 {
			t.Errorf("shutdownTimeout = %v, maxBodyBytes = %d", transport.shutdownTimeout, transport.maxBodyBytes)
		}
	})
}

func TestHTTP_Handler(t *testing.T) {
	httpHandler := NewHTTP(":0", WithMaxBodyBytes(256)).Handler(echoHandler)

	post := func(body, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		httpHandler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("handles POST /mcp requests", func(t *testing.T) {
		rec := post(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "application/json")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp["id"] != float64(1) {
			t.Errorf("id = %v", resp["id"])
		}
	})

	t.Run("accepts charset parameter", func(t *testing.T) {
		rec := post(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "application/json; charset=utf-8")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("notification gets 202", func(t *testing.T) {
		rec := post(`{"jsonrpc":"2.0","method":"notifications/initialized"}`, "application/json")

		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("parse error still answered", func(t *testing.T) {
		rec := post(`{oops`, "application/json")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":-32700`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"wrong content type", http.MethodPost, "text/plain", `{}`, http.StatusUnsupportedMediaType},
		{"missing content type", http.MethodPost, "", `{}`, http.StatusUnsupportedMediaType},
		{"GET not allowed", http.MethodGet, "application/json", ``, http.StatusMethodNotAllowed},
		{"body too large", http.MethodPost, "application/json", strings.Repeat(" ", 300), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/mcp", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			httpHandler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("health = %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHTTP_Serve(t *testing.T) {
	transport := NewHTTP("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- transport.Serve(ctx, echoHandler) }()

	deadline := time.Now().Add(2 * time.Second)
	for transport.ListenAddr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if transport.ListenAddr() == "" {
		t.Fatal("server did not start")
	}

	resp, err := http.Post("http://"+transport.ListenAddr()+"/mcp", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":5,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `"id":5`) {
		t.Errorf("body = %s", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
