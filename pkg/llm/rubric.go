package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/blocniti/blocniti/pkg/models"
)

// Rubric is an offline provider that classifies with keyword rules and answers
// in the same JSON shape a model is asked for. It reads the text after the
// last "Issue description:" line of the prompt, or the whole prompt when that
// line is missing.
type Rubric struct{}

func NewRubric() *Rubric { return &Rubric{} }

type rubricRule struct {
	class    string
	deadline string
	keywords []string
	analysis string
}

// checked in order; the first matching rule wins
var rubricRules = []rubricRule{
	{
		class:    models.ViolationClassA,
		deadline: models.DeadlineImmediate,
		keywords: []string{"no heat", "heat", "hot water", "gas", "exposed wiring", "wiring", "sparks", "carbon monoxide", "smoke detector", "sewage", "fire escape"},
		analysis: "This looks like an immediately hazardous condition. Landlords must correct these within 24-72 hours and face daily penalties otherwise.",
	},
	{
		class:    models.ViolationClassB,
		deadline: models.Deadline30Days,
		keywords: []string{"window", "peeling paint", "paint", "leak", "mold", "mice", "roach", "rodent", "pest", "plumbing", "lock", "door"},
		analysis: "This looks like a hazardous condition. Landlords must correct these within 30 days.",
	},
	{
		class:    models.ViolationClassC,
		deadline: models.Deadline90Days,
		keywords: []string{"cosmetic", "scratch", "stain", "faded", "minor", "cabinet", "tile", "crack"},
		analysis: "This looks like a non-hazardous condition that still affects quality of life. Landlords must correct these within 90 days.",
	},
}

type rubricReply struct {
	ViolationClass string `json:"violationClass"`
	Deadline       string `json:"deadline"`
	Analysis       string `json:"analysis"`
}

func (r *Rubric) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	desc := strings.ToLower(issueText(prompt))

	reply := rubricReply{
		ViolationClass: models.ViolationClassUnknown,
		Deadline:       models.DeadlineUnknown,
		Analysis:       "The description does not match a known HPD category. Contact 311 or your local HPD office for an inspection.",
	}
	for _, rule := range rubricRules {
		if containsAny(desc, rule.keywords) {
			reply = rubricReply{ViolationClass: rule.class, Deadline: rule.deadline, Analysis: rule.analysis}
			break
		}
	}

	b, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Rubric) Close() error { return nil }

func issueText(prompt string) string {
	const marker = "Issue description:"
	i := strings.LastIndex(prompt, marker)
	if i < 0 {
		return prompt
	}
	rest := strings.TrimSpace(prompt[i+len(marker):])
	if strings.HasPrefix(rest, `"`) {
		rest = rest[1:]
		if j := strings.Index(rest, "\"\n"); j >= 0 {
			return rest[:j]
		}
		return strings.TrimSuffix(rest, `"`)
	}
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		return rest[:j]
	}
	return rest
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
