package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The nested parts of papers and answers are stored as JSONB columns.
// Each column type implements sql.Scanner and driver.Valuer so sqlx can
// read and write it like any other field.

// Questions is the JSONB column type for a paper's question tree.
type Questions []Question

func (q Questions) Value() (driver.Value, error) {
	return json.Marshal(NormalizeQuestions([]Question(q)))
}

func (q *Questions) Scan(src any) error {
	return scanJSON(src, q)
}

// Answers is the JSONB column type for an AnswerDoc's answers.
type Answers []AnswerQuestion

func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		a = Answers{}
	}
	return json.Marshal([]AnswerQuestion(a))
}

func (a *Answers) Scan(src any) error {
	return scanJSON(src, a)
}

// Courses is the JSONB column type for a university's course list.
type Courses []string

func (c Courses) Value() (driver.Value, error) {
	if c == nil {
		c = Courses{}
	}
	return json.Marshal([]string(c))
}

func (c *Courses) Scan(src any) error {
	return scanJSON(src, c)
}

// Value stores a ParsedPaper (an extraction job result) as JSONB.
func (p ParsedPaper) Value() (driver.Value, error) {
	p.Normalize()
	return json.Marshal(p)
}

func (p *ParsedPaper) Scan(src any) error {
	return scanJSON(src, p)
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
