// Package llm provides single-turn text completion against the supported
// model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Provider sends one user prompt and returns the model's reply text.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// StatusError reports a non-success HTTP status from a provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s api error: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error: %d", e.Provider, e.Code)
}

// package-level logger for pkg/llm; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/llm. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// New builds the provider selected by cfg. A nil httpClient gets a default
// transport.
func New(ctx context.Context, cfg Config, httpClient *http.Client) (Provider, error) {
	cfg = cfg.WithDefaults()
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	switch cfg.Provider {
	case ProviderOpenRouter:
		return NewOpenRouter(cfg, httpClient), nil
	case ProviderOllama:
		return NewOllama(cfg, httpClient)
	case ProviderGemini:
		return NewGemini(ctx, cfg, httpClient)
	case ProviderRubric:
		return NewRubric(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func closeIdle(c *http.Client) {
	if c == nil || c.Transport == nil {
		return
	}
	if tr, ok := c.Transport.(interface{ CloseIdleConnections() }); ok {
		tr.CloseIdleConnections()
	}
}
