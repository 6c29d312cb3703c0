package narrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func chatHandler(t *testing.T, status int, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestGenerateTextSuccess(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, http.StatusOK,
		`{"choices":[{"message":{"content":"A quiet night."}}]}`))
	defer srv.Close()

	c := NewDeepSeekClient("test-key", srv.URL, "test-model", zap.NewNop())
	got, err := c.GenerateText("prompt", 100, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if got != "A quiet night." {
		t.Errorf("GenerateText() = %q", got)
	}
}

func TestGenerateTextFallsBackToReasoning(t *testing.T) {
	// DeepSeek R1はcontentが空でreasoningだけを返すことがある
	srv := httptest.NewServer(chatHandler(t, http.StatusOK,
		`{"choices":[{"message":{"content":"","reasoning":"The town sleeps."}}]}`))
	defer srv.Close()

	c := NewDeepSeekClient("test-key", srv.URL, "", zap.NewNop())
	got, err := c.GenerateText("prompt", 100, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if got != "The town sleeps." {
		t.Errorf("GenerateText() = %q", got)
	}
}

func TestGenerateTextWithoutAPIKey(t *testing.T) {
	c := NewDeepSeekClient("", "", "", zap.NewNop())
	if _, err := c.GenerateText("prompt", 100, 0.7); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestGenerateTextStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, "invalid API key"},
		{"rate limited", http.StatusTooManyRequests, `{}`, "rate limit exceeded"},
		{"server error", http.StatusInternalServerError, `{}`, "server error"},
		{"api error message", http.StatusBadRequest, `{"error":{"message":"model not found"}}`, "model not found"},
		{"unknown status", http.StatusBadGateway, `{}`, "HTTP 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(chatHandler(t, tt.status, tt.body))
			defer srv.Close()

			c := NewDeepSeekClient("test-key", srv.URL, "", zap.NewNop())
			_, err := c.GenerateText("prompt", 100, 0.7)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("err = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestGenerateTextEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, http.StatusOK, `{"choices":[]}`))
	defer srv.Close()

	c := NewDeepSeekClient("test-key", srv.URL, "", zap.NewNop())
	if _, err := c.GenerateText("prompt", 100, 0.7); err == nil {
		t.Fatal("expected an error on empty choices")
	}
}
