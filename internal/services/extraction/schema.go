package extraction

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// ExamSchema returns the JSON Schema every extraction response must
// satisfy. A fresh value is built on each call because backends and the
// resolver may annotate the schema they are given.
func ExamSchema() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }
	marks := func() *jsonschema.Schema { return &jsonschema.Schema{Types: []string{"number", "null"}} }

	figures := func() *jsonschema.Schema {
		return &jsonschema.Schema{
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"label":       str(),
					"description": str(),
				},
			},
		}
	}
	equations := func() *jsonschema.Schema {
		return &jsonschema.Schema{
			Type: "array",
			Items: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"latex":       str(),
					"description": str(),
				},
				Required: []string{"latex"},
			},
		}
	}

	subQuestion := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"sub_number": str(),
			"text":       str(),
			"marks":      marks(),
			"figures":    figures(),
			"equations":  equations(),
		},
		Required: []string{"sub_number", "text"},
	}

	question := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question_number": str(),
			"text":            str(),
			"marks":           marks(),
			"figures":         figures(),
			"equations":       equations(),
			"sub_questions":   {Type: "array", Items: subQuestion},
		},
		Required: []string{"question_number", "text"},
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"course_code": str(),
			"course_name": str(),
			"exam_date":   {Type: "string", Description: `YYYY-MM-DD or ""`},
			"exam_year":   {Type: "string", Description: `four-digit year or ""`},
			"questions":   {Type: "array", Items: question},
		},
		Required: []string{"course_code", "course_name", "questions"},
	}
}

// schemaMap converts the schema to the generic map form some SDKs take.
func schemaMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
