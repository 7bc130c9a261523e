package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// Store is what the workspace needs from persistence.
type Store interface {
	GetPaper(ctx context.Context, id string) (*models.PaperDoc, error)
	store.AnswerStore
}

var errNotSignedIn = &apperrors.CustomError{Err: apperrors.ErrUnauthenticated, Message: "You must be signed in to use the workspace."}

// Service implements adoption and answer editing.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(s Store, log zerolog.Logger) *Service {
	return &Service{store: s, log: log}
}

// Adopt adds a published paper to the caller's workspace. If the caller
// already has an AnswerDoc for the paper, that document is returned with
// created == false and nothing is written.
//
// The existence check runs twice, the second time right before the
// create. Two truly concurrent adoptions by the same user can still both
// pass it; the store has no uniqueness constraint on (owner, paper).
func (s *Service) Adopt(ctx context.Context, ident *models.Identity, paperID string) (*models.AnswerDoc, bool, error) {
	if ident == nil || ident.UID == "" {
		return nil, false, errNotSignedIn
	}

	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, false, err
	}
	if !paper.IsPublished() {
		if !paper.VisibleTo(ident.UID) {
			return nil, false, apperrors.NewNotFoundError("Paper not found.")
		}
		return nil, false, apperrors.NewValidationError("Only published papers can be added to the workspace.")
	}

	if existing, err := s.existing(ctx, ident.UID, paperID); err != nil || existing != nil {
		return existing, false, err
	}

	doc := DeriveAnswerSkeleton(paper, ident)

	if existing, err := s.existing(ctx, ident.UID, paperID); err != nil || existing != nil {
		return existing, false, err
	}
	if err := s.store.CreateAnswer(ctx, doc); err != nil {
		return nil, false, err
	}

	s.log.Info().Str("answer_id", doc.ID).Str("paper_id", paperID).Str("uid", ident.UID).Msg("📥 Paper added to workspace")
	return doc, true, nil
}

func (s *Service) existing(ctx context.Context, uid, paperID string) (*models.AnswerDoc, error) {
	doc, err := s.store.FindAnswerByOwnerAndPaper(ctx, uid, paperID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}

// Status reports whether uid already has paperID in the workspace.
func (s *Service) Status(ctx context.Context, uid, paperID string) (models.WorkspaceStatusResponse, error) {
	doc, err := s.existing(ctx, uid, paperID)
	if err != nil || doc == nil {
		return models.WorkspaceStatusResponse{}, err
	}
	return models.WorkspaceStatusResponse{InWorkspace: true, AnswerID: doc.ID}, nil
}

// List returns the caller's AnswerDocs, newest first.
func (s *Service) List(ctx context.Context, uid string) ([]models.AnswerDoc, error) {
	return s.store.ListAnswersByOwner(ctx, uid)
}

// Get returns the caller's AnswerDoc and its source paper. The paper is
// nil when it was deleted or is no longer visible to the caller.
func (s *Service) Get(ctx context.Context, uid, answerID string) (*models.AnswerDoc, *models.PaperDoc, error) {
	doc, err := s.owned(ctx, uid, answerID)
	if err != nil {
		return nil, nil, err
	}

	paper, err := s.store.GetPaper(ctx, doc.PaperID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return doc, nil, nil
	case err != nil:
		return nil, nil, err
	case !paper.VisibleTo(uid):
		return doc, nil, nil
	}
	return doc, paper, nil
}

// Update replaces the answers and/or title. Replacement answers must keep
// the skeleton's labels and order.
func (s *Service) Update(ctx context.Context, uid, answerID string, answers *[]models.AnswerQuestion, title *string) (*models.AnswerDoc, error) {
	doc, err := s.owned(ctx, uid, answerID)
	if err != nil {
		return nil, err
	}

	if answers != nil {
		if !sameShape(doc.Answers, *answers) {
			return nil, apperrors.NewValidationError("Answers must keep the paper's question and sub-question labels in order.")
		}
		doc.Answers = cloneAnswers(*answers)
	}
	if title != nil {
		doc.Title = *title
	}

	if err := s.store.UpdateAnswer(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetQuestionAnswer sets the answer of question qi.
func (s *Service) SetQuestionAnswer(ctx context.Context, uid, answerID string, qi int, text string) (*models.AnswerDoc, error) {
	doc, err := s.owned(ctx, uid, answerID)
	if err != nil {
		return nil, err
	}
	if qi < 0 || qi >= len(doc.Answers) {
		return nil, outOfRange("Question", qi, len(doc.Answers))
	}

	answers := cloneAnswers(doc.Answers)
	answers[qi].Answer = text
	doc.Answers = answers

	if err := s.store.UpdateAnswer(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SetSubAnswer sets the answer of sub-question si of question qi.
func (s *Service) SetSubAnswer(ctx context.Context, uid, answerID string, qi, si int, text string) (*models.AnswerDoc, error) {
	doc, err := s.owned(ctx, uid, answerID)
	if err != nil {
		return nil, err
	}
	if qi < 0 || qi >= len(doc.Answers) {
		return nil, outOfRange("Question", qi, len(doc.Answers))
	}
	if n := len(doc.Answers[qi].SubQuestions); si < 0 || si >= n {
		return nil, outOfRange("Sub-question", si, n)
	}

	answers := cloneAnswers(doc.Answers)
	answers[qi].SubQuestions[si].Answer = text
	doc.Answers = answers

	if err := s.store.UpdateAnswer(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the caller's AnswerDoc.
func (s *Service) Delete(ctx context.Context, uid, answerID string) error {
	if _, err := s.owned(ctx, uid, answerID); err != nil {
		return err
	}
	return s.store.DeleteAnswer(ctx, answerID)
}

func (s *Service) owned(ctx context.Context, uid, answerID string) (*models.AnswerDoc, error) {
	if uid == "" {
		return nil, errNotSignedIn
	}
	doc, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerUID != uid {
		return nil, apperrors.NewForbiddenError("This answer document belongs to another user.")
	}
	return doc, nil
}

func outOfRange(what string, index, n int) error {
	return apperrors.NewValidationError(fmt.Sprintf("%s index %d is out of range (0-%d).", what, index, n-1))
}

func cloneAnswers(in []models.AnswerQuestion) models.Answers {
	out := make(models.Answers, len(in))
	for i, q := range in {
		out[i] = q
		out[i].SubQuestions = append([]models.AnswerSubQuestion{}, q.SubQuestions...)
	}
	return out
}
