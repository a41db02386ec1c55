package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-object",
		Description: "A test object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"age":   map[string]any{"type": "integer", "minimum": 0},
				"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			},
			"required": []any{"name", "age"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"optional omitted", `{"name":"Bob","age":8}`, false},
		{"missing required", `{"name":"Charlie"}`, true},
		{"wrong type", `{"name":"Dave","age":"ten"}`, true},
		{"bad enum", `{"name":"Eve","age":9,"grade":"Z"}`, true},
		{"not json", `Sure! Here you go`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `[1,2]`, `[1,2]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here are your questions:\n[{\"a\":1}]\nGood luck!", `[{"a":1}]`},
		{"object", `  {"questions": []} `, `{"questions": []}`},
		{"no json", `no json here`, `no json here`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestStructured_Advisory(t *testing.T) {
	advisory := testSchema()
	advisory.Name = "test-object-advisory"
	advisory.Advisory = true

	// 缺少必填字段、裸数组都原样返回，由调用方逐条检查
	for _, raw := range []string{`{"name":"Charlie"}`, "```json\n[{\"name\":\"Dora\"}]\n```"} {
		content, err := structured(advisory, raw)
		assert.NoError(t, err, raw)
		assert.True(t, json.Valid(content), raw)
	}

	_, err := structured(advisory, "Sure! Here you go")
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)

	_, err = structured(testSchema(), `{"name":"Charlie"}`)
	assert.ErrorAs(t, err, &inv)
}
