// Package workspace manages users' answer documents: private copies of
// published papers with an empty answer slot per question.
package workspace

import "github.com/Shimizu-Technology/paperhub-api/internal/models"

// DeriveAnswerSkeleton builds an unsaved AnswerDoc for paper, owned by
// ident. Question and sub-question labels and order are copied exactly;
// every answer starts empty. Metadata is a snapshot: later edits to the
// paper do not reach the AnswerDoc.
func DeriveAnswerSkeleton(paper *models.PaperDoc, ident *models.Identity) *models.AnswerDoc {
	answers := make(models.Answers, len(paper.Questions))
	for i, q := range paper.Questions {
		subs := make([]models.AnswerSubQuestion, len(q.SubQuestions))
		for j, sq := range q.SubQuestions {
			subs[j] = models.AnswerSubQuestion{SubNumber: sq.SubNumber}
		}
		answers[i] = models.AnswerQuestion{
			QuestionNumber: q.QuestionNumber,
			SubQuestions:   subs,
		}
	}

	doc := &models.AnswerDoc{
		PaperID:        paper.ID,
		Title:          paper.Title,
		CourseCode:     paper.CourseCode,
		CourseName:     paper.CourseName,
		ExamDate:       paper.ExamDate,
		ExamYear:       paper.ExamYear,
		UniversityID:   copyString(paper.UniversityID),
		UniversityName: copyString(paper.UniversityName),
		Answers:        answers,
	}
	if ident != nil {
		doc.OwnerUID = ident.UID
		doc.OwnerName = copyString(ident.DisplayName)
		doc.OwnerPhotoURL = copyString(ident.PhotoURL)
	}
	return doc
}

// sameShape reports whether answers carry exactly the labels, in the same
// order, as the stored skeleton.
func sameShape(stored, answers []models.AnswerQuestion) bool {
	if len(stored) != len(answers) {
		return false
	}
	for i := range stored {
		if stored[i].QuestionNumber != answers[i].QuestionNumber {
			return false
		}
		if len(stored[i].SubQuestions) != len(answers[i].SubQuestions) {
			return false
		}
		for j := range stored[i].SubQuestions {
			if stored[i].SubQuestions[j].SubNumber != answers[i].SubQuestions[j].SubNumber {
				return false
			}
		}
	}
	return true
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
