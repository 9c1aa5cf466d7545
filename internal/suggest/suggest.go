// Package suggest proposes new categorization rules for descriptions the
// keyword table failed to match. The output is advisory: a human reviews the
// proposals and edits the rules file; nothing here feeds back into the
// deterministic pipeline.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for rule suggestions.
const DefaultModelName = "gemini-2.5-flash"

// Suggestion is one proposed keyword rule.
type Suggestion struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// BuildPrompt renders the instruction prompt for the model: uncategorized
// descriptions in, strict-JSON keyword rules out, restricted to the known
// category labels.
func BuildPrompt(descriptions, categories []string) string {
	var b strings.Builder

	b.WriteString("You are helping maintain keyword rules for a bank transaction categorizer.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- For each transaction description below, propose ONE keyword rule.\n")
	b.WriteString("- The keyword must be a literal substring of the description, as short as possible while still distinctive.\n")
	b.WriteString("- The category must be one of the known categories listed below.\n")
	b.WriteString("- Skip descriptions you cannot confidently categorize.\n\n")
	b.WriteString("Output STRICT JSON only: a JSON array of objects with \"keyword\" and \"category\" fields.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n\n")

	b.WriteString("Known categories:\n")
	for _, c := range categories {
		b.WriteString("- " + c + "\n")
	}

	b.WriteString("\nDescriptions:\n")
	for _, d := range descriptions {
		b.WriteString("- " + d + "\n")
	}

	return b.String()
}

// Suggest sends the uncategorized descriptions to Gemini and returns the
// proposed rules.
func Suggest(ctx context.Context, descriptions, categories []string) ([]Suggestion, error) {
	if len(descriptions) == 0 {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Suggest: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: BuildPrompt(descriptions, categories)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Suggest: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Suggest: empty response from model")
	}

	var suggestions []Suggestion
	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), &suggestions); err != nil {
		return nil, fmt.Errorf("Suggest: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return suggestions, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
