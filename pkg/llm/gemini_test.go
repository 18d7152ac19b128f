package llm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blocniti/blocniti/pkg/llm"
)

func TestGemini_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"violationClass\":\"C\"}"}]}}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	cfg := llm.Config{Provider: llm.ProviderGemini, APIKey: "k", BaseURL: srv.URL, Model: "gemini-test"}.WithDefaults()
	p, err := llm.NewGemini(ctx, cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewGemini error: %v", err)
	}
	defer p.Close()

	out, err := p.Complete(ctx, "prompt")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != `{"violationClass":"C"}` {
		t.Fatalf("unexpected reply %q", out)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := llm.NewGemini(context.Background(), llm.Config{Provider: llm.ProviderGemini}, http.DefaultClient); err == nil {
		t.Fatalf("expected error without api key")
	}
}
