package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/logger"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// creatingStore counts answer creates on top of the memory store.
type creatingStore struct {
	*store.Memory
	creates int
}

func (c *creatingStore) CreateAnswer(ctx context.Context, a *models.AnswerDoc) error {
	c.creates++
	return c.Memory.CreateAnswer(ctx, a)
}

func strPtr(s string) *string { return &s }

func publishedPaper() *models.PaperDoc {
	return &models.PaperDoc{
		Title:          "CS101 2024 Exam",
		CourseCode:     "CS101",
		CourseName:     "Introduction to Computing",
		ExamYear:       "2024",
		Status:         models.PaperPublished,
		OwnerUID:       "alice",
		UniversityID:   strPtr("uni-1"),
		UniversityName: strPtr("Makerere University"),
		Questions: models.Questions{
			{QuestionNumber: "Q1", Text: "Stem", SubQuestions: []models.SubQuestion{
				{SubNumber: "(ii)", Text: "second listed first"},
				{SubNumber: "(i)", Text: "first"},
			}},
			{QuestionNumber: "Section B - 3", Text: "Essay"},
		},
	}
}

func setup(t *testing.T) (*Service, *creatingStore, *models.PaperDoc) {
	t.Helper()
	cs := &creatingStore{Memory: store.NewMemory()}
	paper := publishedPaper()
	if err := cs.CreatePaper(context.Background(), paper); err != nil {
		t.Fatal(err)
	}
	return NewService(cs, logger.Nop()), cs, paper
}

var bob = &models.Identity{UID: "bob", DisplayName: strPtr("Bob")}

func TestDeriveAnswerSkeleton(t *testing.T) {
	paper := publishedPaper()
	paper.ID = "p1"
	doc := DeriveAnswerSkeleton(paper, bob)

	if doc.PaperID != "p1" || doc.OwnerUID != "bob" || *doc.OwnerName != "Bob" {
		t.Errorf("ownership = %+v", doc)
	}
	if len(doc.Answers) != 2 {
		t.Fatalf("got %d answers", len(doc.Answers))
	}
	want := [][]string{{"Q1", "(ii)", "(i)"}, {"Section B - 3"}}
	for i, labels := range want {
		a := doc.Answers[i]
		if a.QuestionNumber != labels[0] || a.Answer != "" {
			t.Errorf("answer[%d] = %+v", i, a)
		}
		if len(a.SubQuestions) != len(labels)-1 {
			t.Fatalf("answer[%d] has %d subs", i, len(a.SubQuestions))
		}
		for j, sub := range a.SubQuestions {
			if sub.SubNumber != labels[j+1] || sub.Answer != "" {
				t.Errorf("answer[%d].sub[%d] = %+v", i, j, sub)
			}
		}
	}
	if doc.Answers[1].SubQuestions == nil {
		t.Error("sub-questions must be an empty list, not nil")
	}

	// Snapshot semantics
	*paper.UniversityName = "Renamed"
	paper.Title = "Changed"
	if *doc.UniversityName != "Makerere University" || doc.Title != "CS101 2024 Exam" {
		t.Error("skeleton shares metadata with the paper")
	}

	empty := DeriveAnswerSkeleton(&models.PaperDoc{ID: "p2"}, bob)
	if empty.Answers == nil || len(empty.Answers) != 0 {
		t.Errorf("zero-question paper gave %v", empty.Answers)
	}
}

func TestAdoptIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, cs, paper := setup(t)

	first, created, err := svc.Adopt(ctx, bob, paper.ID)
	if err != nil || !created {
		t.Fatalf("first adopt: created=%v err=%v", created, err)
	}
	second, created, err := svc.Adopt(ctx, bob, paper.ID)
	if err != nil || created {
		t.Fatalf("second adopt: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Errorf("second adopt returned %s, want existing %s", second.ID, first.ID)
	}
	if cs.creates != 1 {
		t.Errorf("creates = %d, want 1", cs.creates)
	}

	list, _ := svc.List(ctx, "bob")
	if len(list) != 1 {
		t.Errorf("workspace has %d docs", len(list))
	}
	status, _ := svc.Status(ctx, "bob", paper.ID)
	if !status.InWorkspace || status.AnswerID != first.ID {
		t.Errorf("Status() = %+v", status)
	}
	other, _ := svc.Status(ctx, "carol", paper.ID)
	if other.InWorkspace {
		t.Error("carol should not have the paper")
	}
}

func TestAdoptRejections(t *testing.T) {
	ctx := context.Background()
	svc, cs, _ := setup(t)

	draft := publishedPaper()
	draft.Status = models.PaperDraft
	if err := cs.CreatePaper(ctx, draft); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ident   *models.Identity
		paperID string
		want    error
	}{
		{"anonymous", nil, draft.ID, apperrors.ErrUnauthenticated},
		{"missing paper", bob, "nope", apperrors.ErrNotFound},
		{"someone else's draft", bob, draft.ID, apperrors.ErrNotFound},
		{"own draft", &models.Identity{UID: "alice"}, draft.ID, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Adopt(ctx, tt.ident, tt.paperID); !errors.Is(err, tt.want) {
				t.Errorf("Adopt() error = %v, want %v", err, tt.want)
			}
		})
	}
	if cs.creates != 0 {
		t.Errorf("creates = %d", cs.creates)
	}
}

func TestAnswerEditing(t *testing.T) {
	ctx := context.Background()
	svc, _, paper := setup(t)
	doc, _, err := svc.Adopt(ctx, bob, paper.ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SetQuestionAnswer(ctx, "bob", doc.ID, 1, "An essay"); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.SetSubAnswer(ctx, "bob", doc.ID, 0, 1, "i answer")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Answers[1].Answer != "An essay" || updated.Answers[0].SubQuestions[1].Answer != "i answer" {
		t.Errorf("answers = %+v", updated.Answers)
	}
	if updated.Answers[0].SubQuestions[0].Answer != "" {
		t.Error("sibling answer changed")
	}

	if _, err := svc.SetSubAnswer(ctx, "bob", doc.ID, 1, 0, "x"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("out-of-range sub error = %v", err)
	}
	if _, err := svc.SetQuestionAnswer(ctx, "carol", doc.ID, 0, "x"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("other user error = %v", err)
	}

	// Whole-document replacement must keep the labels
	reordered := []models.AnswerQuestion{updated.Answers[1], updated.Answers[0]}
	if _, err := svc.Update(ctx, "bob", doc.ID, &reordered, nil); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("reordered answers error = %v", err)
	}
	same := []models.AnswerQuestion(updated.Answers)
	same[0].Answer = "stem answer"
	got, err := svc.Update(ctx, "bob", doc.ID, &same, strPtr("My revision"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "My revision" || got.Answers[0].Answer != "stem answer" {
		t.Errorf("update = %+v", got)
	}

	answer, source, err := svc.Get(ctx, "bob", doc.ID)
	if err != nil || source == nil || source.ID != paper.ID || answer.Title != "My revision" {
		t.Errorf("Get() = %v, %v, %v", answer, source, err)
	}
}

func TestGetAfterPaperDeleted(t *testing.T) {
	ctx := context.Background()
	svc, cs, paper := setup(t)
	doc, _, _ := svc.Adopt(ctx, bob, paper.ID)

	if err := cs.DeletePaper(ctx, paper.ID); err != nil {
		t.Fatal(err)
	}
	answer, source, err := svc.Get(ctx, "bob", doc.ID)
	if err != nil || answer == nil || source != nil {
		t.Errorf("Get() = %v, %v, %v; want answer with nil paper", answer, source, err)
	}

	if err := svc.Delete(ctx, "carol", doc.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("Delete by other user error = %v", err)
	}
	if err := svc.Delete(ctx, "bob", doc.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Get(ctx, "bob", doc.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get after delete error = %v", err)
	}
}
