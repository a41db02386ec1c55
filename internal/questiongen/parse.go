package questiongen

import (
	"encoding/json"
	"errors"
	"fmt"

	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/llm"
	"placeprep_backend/internal/question"
)

var errNoItems = errors.New("no question items in response")

// Parse decodes model output into validated records. It accepts a bare JSON
// array or an object with a "questions" array, optionally wrapped in markdown
// fences. Invalid and duplicate items are dropped; the number dropped is
// returned alongside the kept records.
func Parse(raw []byte, band difficulty.Band) ([]question.Question, int, error) {
	body := []byte(llm.ExtractJSON(string(raw)))

	// 逐条解码，单条字段类型错误不影响其他题目
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		var wrapped struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, 0, fmt.Errorf("decode questions: %w", err)
		}
		items = wrapped.Questions
	}
	if len(items) == 0 {
		return nil, 0, errNoItems
	}

	valid := make([]question.Question, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for _, item := range items {
		var q question.Question
		if err := json.Unmarshal(item, &q); err != nil {
			dropped++
			continue
		}
		if err := q.Validate(); err != nil {
			dropped++
			continue
		}
		key := question.Normalize(q.Text)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		q.Difficulty = string(band)
		q.Source = question.SourceGenerated
		valid = append(valid, q)
	}
	return valid, dropped, nil
}
