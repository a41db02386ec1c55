package questiongen

import (
	"fmt"
	"strings"

	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/llm"
)

const systemPrompt = `You write multiple-choice questions for engineering students preparing for campus placement tests.
Every question has exactly four distinct options and exactly one correct answer.
The "answer" field must repeat the text of the correct option exactly.
Reply with JSON only.`

var bandGuidance = map[difficulty.Band]string{
	difficulty.Beginner:     "Test definitions and direct recall of core facts.",
	difficulty.Intermediate: "Test application of concepts to short scenarios or small calculations.",
	difficulty.Advanced:     "Test multi-step reasoning, edge cases and comparisons between techniques.",
}

// BuildPrompt renders the user prompt for one generation call.
func BuildPrompt(req Request, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d %s-level multiple-choice questions on %q", count, req.Difficulty, req.Topic)
	if req.Subtopic != "" {
		fmt.Fprintf(&b, ", focusing on %q", req.Subtopic)
	}
	b.WriteString(".\n")
	if g, ok := bandGuidance[req.Difficulty]; ok {
		b.WriteString(g)
		b.WriteString("\n")
	}
	b.WriteString(`Return an object {"questions": [...]} where each item has the fields ` +
		`"question" (string), "options" (array of 4 strings), "answer" (string) and "explanation" (one sentence).`)
	return b.String()
}

// batchSchema describes the wanted shape to the provider but is advisory:
// a bare array or an item missing a field still reaches Parse, which drops
// bad items one by one.
var batchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of multiple-choice quiz questions",
	Advisory:    true,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":    map[string]any{"type": "string"},
						"options":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"answer":      map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
					},
				},
			},
		},
		"required": []any{"questions"},
	},
}
