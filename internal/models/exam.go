package models

// ParsedPaper is the structured result of extracting an exam PDF.
// The JSON names match the schema the model is constrained to, so the
// same type decodes the model output and travels through the API.
type ParsedPaper struct {
	CourseCode string     `json:"course_code" bson:"course_code"`
	CourseName string     `json:"course_name" bson:"course_name"`
	ExamDate   string     `json:"exam_date" bson:"exam_date"`
	ExamYear   string     `json:"exam_year" bson:"exam_year"`
	Questions  []Question `json:"questions" bson:"questions"`
}

// Question is one top-level exam question.
// Go Pattern: *float64 for marks because "no marks shown" (null) is
// different from "0 marks".
type Question struct {
	QuestionNumber string        `json:"question_number" bson:"question_number"`
	Text           string        `json:"text" bson:"text"`
	Marks          *float64      `json:"marks" bson:"marks"`
	Figures        []Figure      `json:"figures" bson:"figures"`
	Equations      []Equation    `json:"equations" bson:"equations"`
	SubQuestions   []SubQuestion `json:"sub_questions" bson:"sub_questions"`
}

// SubQuestion is one lettered or numbered part of a Question.
type SubQuestion struct {
	SubNumber string     `json:"sub_number" bson:"sub_number"`
	Text      string     `json:"text" bson:"text"`
	Marks     *float64   `json:"marks" bson:"marks"`
	Figures   []Figure   `json:"figures" bson:"figures"`
	Equations []Equation `json:"equations" bson:"equations"`
}

// Figure describes a diagram, table or image in words.
// Label is the printed label or a synthetic one like "figure_q1a_1".
type Figure struct {
	Label       string `json:"label" bson:"label"`
	Description string `json:"description" bson:"description"`
}

// Equation holds a formula as LaTeX without delimiters.
type Equation struct {
	Latex       string `json:"latex" bson:"latex"`
	Description string `json:"description" bson:"description"`
}

// Normalize replaces nil collections with empty ones so every field is
// present when the paper is serialized.
func (p *ParsedPaper) Normalize() {
	if p.Questions == nil {
		p.Questions = []Question{}
	}
	for i := range p.Questions {
		p.Questions[i].normalize()
	}
}

func (q *Question) normalize() {
	if q.Figures == nil {
		q.Figures = []Figure{}
	}
	if q.Equations == nil {
		q.Equations = []Equation{}
	}
	if q.SubQuestions == nil {
		q.SubQuestions = []SubQuestion{}
	}
	for i := range q.SubQuestions {
		sq := &q.SubQuestions[i]
		if sq.Figures == nil {
			sq.Figures = []Figure{}
		}
		if sq.Equations == nil {
			sq.Equations = []Equation{}
		}
	}
}

// NormalizeQuestions applies the same normalization to a bare question list.
func NormalizeQuestions(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	for i := range qs {
		qs[i].normalize()
	}
	return qs
}
