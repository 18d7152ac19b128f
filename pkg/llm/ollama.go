package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama completes prompts through a local Ollama server.
type Ollama struct {
	api    *api.Client
	cfg    Config
	client *http.Client
	closed int32
}

func NewOllama(cfg Config, httpClient *http.Client) (*Ollama, error) {
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	logger.Info("ollama: client created", slog.String("base_url", cfg.BaseURL), slog.String("model", cfg.Model))
	return &Ollama{api: api.NewClient(u, httpClient), cfg: cfg, client: httpClient}, nil
}

func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.cfg.Model,
		Prompt: prompt,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": o.cfg.Temperature,
			"num_predict": o.cfg.MaxTokens,
		},
	}

	start := time.Now()
	var sb strings.Builder
	err := o.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		var se api.StatusError
		if errors.As(err, &se) {
			return "", &StatusError{Provider: ProviderOllama, Code: se.StatusCode, Message: se.ErrorMessage}
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	logger.Debug("ollama completion", slog.String("model", o.cfg.Model), slog.Int64("latency_ms", time.Since(start).Milliseconds()))
	return text, nil
}

// Close releases idle connections on the underlying transport. It is idempotent.
func (o *Ollama) Close() error {
	if o == nil || !atomic.CompareAndSwapInt32(&o.closed, 0, 1) {
		return nil
	}
	closeIdle(o.client)
	return nil
}
