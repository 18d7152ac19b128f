// Package classify turns a repair-issue description into an HPD violation
// class, a correction deadline and a short analysis using a language model.
// Classify never fails: any problem with the model yields a fixed fallback.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blocniti/blocniti/internal/logging"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/llm"
	"github.com/blocniti/blocniti/pkg/models"
)

// FallbackAnalysis is stored when the model cannot be reached or answers with
// nothing usable.
const FallbackAnalysis = "I'm not sure about the exact violation class, but here are some resources that might help. For immediate hazards, contact 311 or your local HPD office."

// DefaultTimeout bounds one classification call.
const DefaultTimeout = 20 * time.Second

// Completer is the model call the classifier depends on. llm.Provider
// implementations satisfy it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier wraps a Completer with the prompt, reply parsing and fallback.
type Classifier struct {
	completer Completer
	schemas   *schema.Loader
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a classifier. A zero timeout means DefaultTimeout; schemas may
// be nil, in which case replies are checked for the three keys only.
func New(c Completer, schemas *schema.Loader, timeout time.Duration, logger *slog.Logger) *Classifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{completer: c, schemas: schemas, timeout: timeout, logger: logger}
}

// Fallback is the classification used when the model call fails.
func Fallback() models.Classification {
	return models.Classification{
		ViolationClass: models.ViolationClassUnknown,
		Deadline:       models.DeadlineUnknown,
		Analysis:       FallbackAnalysis,
	}
}

// Classify makes one completion call for description and interprets the
// reply. It always returns a classification.
func (c *Classifier) Classify(ctx context.Context, description string) models.Classification {
	log := logging.FromContext(ctx, c.logger)

	prompt, err := BuildPrompt(description)
	if err != nil {
		log.Error("classify: render prompt", slog.Any("error", err))
		return Fallback()
	}

	ctxReq, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.completer.Complete(ctxReq, prompt)
	if err == nil && strings.TrimSpace(out) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		log.Warn("classify: completion failed, using fallback",
			slog.Any("error", err),
			slog.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()))
		return Fallback()
	}

	reply := c.Interpret(ctxReq, out)
	if u, ok := reply.(Unparsed); ok {
		log.Info("classify: reply not in expected shape", slog.Int("raw_len", len(u.Raw)))
	}
	result := reply.Classification()
	log.Debug("classify: done",
		slog.String("violation_class", result.ViolationClass),
		slog.String("deadline", result.Deadline),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()))
	return result
}

// Reply is the interpreted model output: either Parsed or Unparsed.
type Reply interface {
	Classification() models.Classification
	isReply()
}

// Parsed is a reply that carried the three expected keys. Class and deadline
// are already clamped to their closed sets.
type Parsed struct {
	Result models.Classification
}

func (p Parsed) Classification() models.Classification { return p.Result }
func (Parsed) isReply()                                {}

// Unparsed is a reply that could not be read as the expected object. The raw
// text is kept as the analysis.
type Unparsed struct {
	Raw string
}

func (u Unparsed) Classification() models.Classification {
	return models.Classification{
		ViolationClass: models.ViolationClassUnknown,
		Deadline:       models.DeadlineUnknown,
		Analysis:       u.Raw,
	}
}
func (Unparsed) isReply() {}

type replyJSON struct {
	ViolationClass string `json:"violationClass"`
	Deadline       string `json:"deadline"`
	Analysis       string `json:"analysis"`
}

// Interpret reads a model reply. The JSON object may be wrapped in prose or a
// code fence; the span from the first '{' to the last '}' is used.
func (c *Classifier) Interpret(ctx context.Context, raw string) Reply {
	j := extractJSON(raw)
	if j == "" {
		return Unparsed{Raw: raw}
	}

	if c.schemas != nil {
		verrs, err := c.schemas.Validate(ctx, schema.ClassificationReply, []byte(j))
		if err != nil || len(verrs) > 0 {
			return Unparsed{Raw: raw}
		}
	}

	var r replyJSON
	if err := decodeStrict(j, &r); err != nil {
		return Unparsed{Raw: raw}
	}

	return Parsed{Result: models.Classification{
		ViolationClass: models.NormalizeViolationClass(r.ViolationClass),
		Deadline:       models.NormalizeDeadline(r.Deadline),
		Analysis:       strings.TrimSpace(r.Analysis),
	}}
}

// decodeStrict unmarshals j and requires all three keys to be present as strings.
func decodeStrict(j string, r *replyJSON) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(j), &fields); err != nil {
		return err
	}
	for _, k := range []string{"violationClass", "deadline", "analysis"} {
		v, ok := fields[k]
		if !ok {
			return fmt.Errorf("missing key %s", k)
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("key %s: %w", k, err)
		}
	}
	return json.Unmarshal([]byte(j), r)
}

// extractJSON returns the substring from the first '{' to the last '}' in the input.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}
