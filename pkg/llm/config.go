package llm

import "time"

// Provider names accepted in Config.Provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
	ProviderRubric     = "rubric"
)

// Config holds settings for the completion provider used by the classifier.
type Config struct {
	// Provider selects the backend: openrouter, ollama, gemini or rubric.
	Provider string `yaml:"provider" json:"provider"`
	// BaseURL is the API root, e.g. https://openrouter.ai/api/v1 or http://localhost:11434
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"-"`
	Model   string `yaml:"model" json:"model"`
	// Temperature and MaxTokens are sent with every completion request.
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	// Timeout bounds a single completion call.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// Referer and Title are forwarded as HTTP-Referer and X-Title (OpenRouter only).
	Referer string `yaml:"referer" json:"referer"`
	Title   string `yaml:"title" json:"title"`
}

// DefaultConfig returns the OpenRouter setup the service ships with.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOpenRouter,
		BaseURL:     "https://openrouter.ai/api/v1",
		Model:       "anthropic/claude-3-haiku",
		Temperature: 0.3,
		MaxTokens:   500,
		Timeout:     20 * time.Second,
		Referer:     "http://localhost:5000",
		Title:       "BlocNiti AI",
	}
}

// WithDefaults fills zero fields from DefaultConfig, using provider-specific
// endpoints and models for ollama and gemini.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	switch c.Provider {
	case ProviderOllama:
		d.BaseURL = "http://localhost:11434"
		d.Model = "llama3"
	case ProviderGemini:
		d.BaseURL = ""
		d.Model = "gemini-2.0-flash"
	case ProviderRubric:
		d.BaseURL = ""
		d.Model = "keyword-rubric"
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Temperature == 0 {
		c.Temperature = d.Temperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Referer == "" {
		c.Referer = d.Referer
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	return c
}
