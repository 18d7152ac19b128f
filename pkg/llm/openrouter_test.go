package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blocniti/blocniti/pkg/llm"
)

func TestOpenRouter_Complete_SendsExpectedRequest(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") != "BlocNiti AI" || r.Header.Get("HTTP-Referer") == "" {
			t.Errorf("missing attribution headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"violationClass\":\"B\"}  "}}]}`))
	}))
	defer srv.Close()

	cfg := llm.Config{BaseURL: srv.URL + "/api/v1/", APIKey: "k"}.WithDefaults()
	p := llm.NewOpenRouter(cfg, srv.Client())
	defer p.Close()

	out, err := p.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != `{"violationClass":"B"}` {
		t.Fatalf("unexpected reply %q", out)
	}
	if got.Model != "anthropic/claude-3-haiku" || got.MaxTokens != 500 || got.Temperature != 0.3 {
		t.Fatalf("unexpected request params: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "classify this" {
		t.Fatalf("expected a single user turn, got %+v", got.Messages)
	}
}

func TestOpenRouter_Complete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		code    int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`, code: 500},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `not json`, code: 429},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: llm.ErrEmptyResponse},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, wantErr: llm.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := llm.NewOpenRouter(llm.Config{BaseURL: srv.URL}.WithDefaults(), srv.Client())
			_, err := p.Complete(context.Background(), "x")
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.code != 0 {
				var se *llm.StatusError
				if !errors.As(err, &se) || se.Code != tt.code {
					t.Fatalf("expected StatusError %d, got %v", tt.code, err)
				}
			}
		})
	}
}

func TestOpenRouter_Complete_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := llm.NewOpenRouter(llm.Config{BaseURL: srv.URL}.WithDefaults(), srv.Client())
	if _, err := p.Complete(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
