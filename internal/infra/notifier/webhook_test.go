package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestWebhook(url string) *Webhook {
	w := NewWebhook(WebhookConfig{WebhookURL: url, Timeout: 5 * time.Second})
	// Tests fire several posts in a row.
	w.rateLimiter = NewRateLimiter(1000, 1000)
	return w
}

func TestWebhookPost_SendsTextPayload(t *testing.T) {
	var (
		requests int
		payload  map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %s", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	webhook := newTestWebhook(server.URL)

	err := webhook.Post(context.Background(), "T\nU\n\nMによる要約\n\na.\n\nb.\n\nc.")

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if requests != 1 {
		t.Errorf("expected exactly 1 request, got %d", requests)
	}
	if payload["text"] != "T\nU\n\nMによる要約\n\na.\n\nb.\n\nc." {
		t.Errorf("unexpected text payload: %q", payload["text"])
	}
}

func TestWebhookPost_NonOKStatusBecomesError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantInMsg  string
		wantClient bool
		wantServer bool
	}{
		{
			name:       "client error embeds status code and text",
			status:     http.StatusNotFound,
			wantInMsg:  "404 Not Found",
			wantClient: true,
		},
		{
			name:       "server error embeds status code and text",
			status:     http.StatusBadGateway,
			wantInMsg:  "502 Bad Gateway",
			wantServer: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			webhook := newTestWebhook(server.URL)

			err := webhook.Post(context.Background(), "message")

			if err == nil {
				t.Fatal("expected error for non-2xx response")
			}
			if !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("expected error to contain %q, got %q", tt.wantInMsg, err.Error())
			}
			// No retry at this layer.
			if requests != 1 {
				t.Errorf("expected exactly 1 request, got %d", requests)
			}

			var clientErr *ClientError
			if tt.wantClient && !errors.As(err, &clientErr) {
				t.Errorf("expected *ClientError, got %T", err)
			}
			var serverErr *ServerError
			if tt.wantServer && !errors.As(err, &serverErr) {
				t.Errorf("expected *ServerError, got %T", err)
			}
		})
	}
}

func TestWebhookPost_RateLimitedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	webhook := newTestWebhook(server.URL)

	err := webhook.Post(context.Background(), "message")

	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
	if rateLimitErr.RetryAfter != 3*time.Second {
		t.Errorf("expected RetryAfter=3s, got %v", rateLimitErr.RetryAfter)
	}
}

func TestWebhookPost_NetworkErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	webhook := newTestWebhook(server.URL)

	err := webhook.Post(context.Background(), "message")

	if err == nil {
		t.Fatal("expected network error")
	}
	if !strings.Contains(err.Error(), "execute http request") {
		t.Errorf("expected wrapped transport error, got %q", err.Error())
	}
}

func TestWebhookNotifySuccessAndFailure(t *testing.T) {
	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]string
		_ = json.Unmarshal(raw, &payload)
		texts = append(texts, payload["text"])
	}))
	defer server.Close()

	webhook := newTestWebhook(server.URL)

	if err := webhook.NotifySuccess(context.Background(), "T", "U", "M", "a.\nb.\nc."); err != nil {
		t.Fatalf("NotifySuccess: %v", err)
	}
	if err := webhook.NotifyFailure(context.Background(), "T", "U", "M", "boom"); err != nil {
		t.Fatalf("NotifyFailure: %v", err)
	}

	if len(texts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(texts))
	}
	if texts[0] != "T\nU\n\nMによる要約\n\na.\n\nb.\n\nc." {
		t.Errorf("unexpected success text: %q", texts[0])
	}
	if texts[1] != "T\nU\n\nMによる要約\n\n要約生成に失敗しました: boom\n\n\n\n" {
		t.Errorf("unexpected failure text: %q", texts[1])
	}
}
