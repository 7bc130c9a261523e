package draft

import "github.com/Shimizu-Technology/paperhub-api/internal/models"

// cloneQuestions deep-copies a question list and normalizes nil
// collections to empty ones.
func cloneQuestions(in []models.Question) []models.Question {
	out := make([]models.Question, len(in))
	for i, q := range in {
		out[i] = models.Question{
			QuestionNumber: q.QuestionNumber,
			Text:           q.Text,
			Marks:          cloneFloat(q.Marks),
			Figures:        append([]models.Figure{}, q.Figures...),
			Equations:      append([]models.Equation{}, q.Equations...),
			SubQuestions:   make([]models.SubQuestion, len(q.SubQuestions)),
		}
		for j, sq := range q.SubQuestions {
			out[i].SubQuestions[j] = models.SubQuestion{
				SubNumber: sq.SubNumber,
				Text:      sq.Text,
				Marks:     cloneFloat(sq.Marks),
				Figures:   append([]models.Figure{}, sq.Figures...),
				Equations: append([]models.Equation{}, sq.Equations...),
			}
		}
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
