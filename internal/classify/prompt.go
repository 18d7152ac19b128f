package classify

import (
	"github.com/blocniti/blocniti/pkg/llm"
)

// promptTemplate is rendered with the issue description. The description line
// must stay on its own line: the offline rubric provider reads it back.
const promptTemplate = `
You are Alma, an AI assistant specializing in NYC housing law and HPD violations.
Analyze the following repair issue and provide:

1. HPD Violation Class (A, B, C, or I if applicable)
2. Correction deadline based on violation class
3. Brief explanation of legal urgency and potential penalties

Issue description: "{{.Description}}"

Respond in this JSON format:
{
  "violationClass": "A|B|C|I|Unknown",
  "deadline": "24-72 hours|30 days|90 days|Unknown",
  "analysis": "Brief explanation of the legal classification and urgency"
}

Guidelines:
- Class A: Immediate hazards (no heat/hot water, gas leaks, exposed wiring) - 24-72 hours
- Class B: Hazardous conditions (defective windows, peeling paint, plumbing leaks) - 30 days
- Class C: Non-hazardous but affects quality (cosmetic damage, minor issues) - 90 days
- If uncertain, classify as "Unknown" and suggest resources
`

// BuildPrompt renders the classification prompt for description. The
// description is embedded verbatim.
func BuildPrompt(description string) (string, error) {
	return llm.RenderTemplate(promptTemplate, map[string]string{"Description": description})
}
