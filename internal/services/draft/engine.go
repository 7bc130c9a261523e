// Package draft holds an exam paper while its owner corrects the
// extracted structure, and turns it into a PaperDoc on save.
//
// Go Pattern: Copy-on-write. Edits never modify a question in place;
// they build a new slice with one element replaced. A caller holding the
// result of Questions() keeps a stable snapshot no matter what is edited
// afterwards, and untouched questions keep their exact values.
//
// An Engine is not safe for concurrent use. The Sessions registry
// serializes access per user.
package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// Mode says whether Save will create a paper or update one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// UntitledTitle is used when neither metadata nor a filename gives a title.
const UntitledTitle = "Untitled Exam"

var (
	ErrNoDraft       = apperrors.NewNotFoundError("No draft in progress.")
	ErrNoQuestions   = apperrors.NewValidationError("A paper needs at least one question before it can be saved.")
	ErrNotSignedIn   = &apperrors.CustomError{Err: apperrors.ErrUnauthenticated, Message: "You must be signed in to save a paper."}
	ErrInvalidStatus = apperrors.NewValidationError("Status must be draft or published.")
)

// PaperWriter is the part of the store Save needs.
type PaperWriter interface {
	CreatePaper(ctx context.Context, p *models.PaperDoc) error
	UpdatePaper(ctx context.Context, p *models.PaperDoc) error
}

// UniversityLookup resolves a university id to its display name.
type UniversityLookup interface {
	GetUniversity(ctx context.Context, id string) (*models.University, error)
}

// content is everything the user can edit. Its JSON form is the
// baseline for Dirty().
type content struct {
	Title        string            `json:"title"`
	CourseCode   string            `json:"courseCode"`
	CourseName   string            `json:"courseName"`
	ExamDate     string            `json:"examDate"`
	ExamYear     string            `json:"examYear"`
	UniversityID *string           `json:"universityId"`
	Questions    []models.Question `json:"questions"`
}

// Engine is one user's editable draft.
type Engine struct {
	papers       PaperWriter
	universities UniversityLookup

	loaded   bool
	mode     Mode
	paperID  string
	ownerUID string // set in edit mode
	status   models.PaperStatus
	selected int
	draft    content
	baseline []byte
}

// NewEngine creates an empty engine. universities may be nil, in which
// case saved papers carry the university id without a name.
func NewEngine(papers PaperWriter, universities UniversityLookup) *Engine {
	return &Engine{papers: papers, universities: universities, mode: ModeCreate}
}

// LoadFromExtraction replaces the draft with a freshly extracted paper.
// The next Save creates a new PaperDoc.
func (e *Engine) LoadFromExtraction(parsed *models.ParsedPaper, filename string) {
	var p models.ParsedPaper
	if parsed != nil {
		p = *parsed
	}

	e.reset(ModeCreate, "", "", "")
	e.draft = content{
		Title:      deriveTitle(p.CourseCode, p.ExamYear, filename),
		CourseCode: p.CourseCode,
		CourseName: p.CourseName,
		ExamDate:   p.ExamDate,
		ExamYear:   p.ExamYear,
		Questions:  cloneQuestions(p.Questions),
	}
	e.baseline = e.snapshot()
}

// LoadFromExisting reopens a saved paper for editing. Only its owner may
// do so; the paper may be a draft or already published.
func (e *Engine) LoadFromExisting(paper *models.PaperDoc, uid string) error {
	if paper == nil {
		return apperrors.NewNotFoundError("Paper not found.")
	}
	if uid == "" {
		return ErrNotSignedIn
	}
	if paper.OwnerUID != uid {
		return apperrors.NewForbiddenError("Only the owner can edit this paper.")
	}

	e.reset(ModeEdit, paper.ID, paper.OwnerUID, paper.Status)
	e.draft = content{
		Title:        paper.Title,
		CourseCode:   paper.CourseCode,
		CourseName:   paper.CourseName,
		ExamDate:     paper.ExamDate,
		ExamYear:     paper.ExamYear,
		UniversityID: cloneString(paper.UniversityID),
		Questions:    cloneQuestions(paper.Questions),
	}
	e.baseline = e.snapshot()
	return nil
}

func (e *Engine) reset(mode Mode, paperID, ownerUID string, status models.PaperStatus) {
	e.loaded = true
	e.mode = mode
	e.paperID = paperID
	e.ownerUID = ownerUID
	e.status = status
	e.selected = 0
}

// Loaded reports whether a draft is in progress.
func (e *Engine) Loaded() bool { return e.loaded }

// Mode reports what the next Save will do.
func (e *Engine) Mode() Mode { return e.mode }

// PaperID is the persisted id, empty until the first save in create mode.
func (e *Engine) PaperID() string { return e.paperID }

// Questions returns the current question list. The slice is never
// modified by later edits; callers must not modify it either.
func (e *Engine) Questions() []models.Question { return e.draft.Questions }

// Selected returns the cursor position.
func (e *Engine) Selected() int { return e.selected }

// SelectQuestion moves the cursor. Out-of-range indices are an error,
// not clamped.
func (e *Engine) SelectQuestion(index int) error {
	if !e.loaded {
		return ErrNoDraft
	}
	if err := e.checkQuestion(index); err != nil {
		return err
	}
	e.selected = index
	return nil
}

// UpdateQuestionText replaces the text of question qi.
func (e *Engine) UpdateQuestionText(qi int, text string) error {
	if !e.loaded {
		return ErrNoDraft
	}
	if err := e.checkQuestion(qi); err != nil {
		return err
	}

	questions := make([]models.Question, len(e.draft.Questions))
	copy(questions, e.draft.Questions)
	questions[qi].Text = text

	e.draft.Questions = questions
	return nil
}

// UpdateSubQuestionText replaces the text of sub-question si of question qi.
func (e *Engine) UpdateSubQuestionText(qi, si int, text string) error {
	if !e.loaded {
		return ErrNoDraft
	}
	if err := e.checkQuestion(qi); err != nil {
		return err
	}
	subs := e.draft.Questions[qi].SubQuestions
	if si < 0 || si >= len(subs) {
		return apperrors.NewValidationError(fmt.Sprintf("Sub-question index %d is out of range (0-%d).", si, len(subs)-1))
	}

	newSubs := make([]models.SubQuestion, len(subs))
	copy(newSubs, subs)
	newSubs[si].Text = text

	questions := make([]models.Question, len(e.draft.Questions))
	copy(questions, e.draft.Questions)
	questions[qi].SubQuestions = newSubs

	e.draft.Questions = questions
	return nil
}

// UpdateMetadata applies the non-nil fields of req.
func (e *Engine) UpdateMetadata(req models.DraftMetadataRequest) error {
	if !e.loaded {
		return ErrNoDraft
	}
	if req.ExamYear != nil {
		if y := strings.TrimSpace(*req.ExamYear); y != "" && !isYear(y) {
			return apperrors.NewValidationError("Exam year must be four digits.")
		}
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&e.draft.Title, req.Title)
	set(&e.draft.CourseCode, req.CourseCode)
	set(&e.draft.CourseName, req.CourseName)
	set(&e.draft.ExamDate, req.ExamDate)
	set(&e.draft.ExamYear, req.ExamYear)

	switch {
	case req.ClearUniversity:
		e.draft.UniversityID = nil
	case req.UniversityID != nil && strings.TrimSpace(*req.UniversityID) == "":
		e.draft.UniversityID = nil
	case req.UniversityID != nil:
		id := strings.TrimSpace(*req.UniversityID)
		e.draft.UniversityID = &id
	}
	return nil
}

// Dirty reports whether the draft differs from what was loaded or last saved.
func (e *Engine) Dirty() bool {
	if !e.loaded {
		return false
	}
	return !bytes.Equal(e.snapshot(), e.baseline)
}

// View is the client-facing snapshot of the session.
func (e *Engine) View() models.DraftView {
	questions := e.draft.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return models.DraftView{
		Mode:           string(e.mode),
		PaperID:        e.paperID,
		Status:         e.status,
		Title:          e.draft.Title,
		CourseCode:     e.draft.CourseCode,
		CourseName:     e.draft.CourseName,
		ExamDate:       e.draft.ExamDate,
		ExamYear:       e.draft.ExamYear,
		UniversityID:   e.draft.UniversityID,
		Questions:      questions,
		SelectedIndex:  e.selected,
		Dirty:          e.Dirty(),
		QuestionsCount: len(questions),
	}
}

// Save persists the draft with the given status. It creates a paper the
// first time and updates the same paper afterwards, including one that is
// already published. Every check runs before the store is touched, and on
// any error the draft is left exactly as it was. created reports whether
// a new paper was written.
func (e *Engine) Save(ctx context.Context, ident *models.Identity, status models.PaperStatus) (doc *models.PaperDoc, created bool, err error) {
	if !e.loaded {
		return nil, false, ErrNoDraft
	}
	if ident == nil || ident.UID == "" {
		return nil, false, ErrNotSignedIn
	}
	if !status.Valid() {
		return nil, false, ErrInvalidStatus
	}
	if len(e.draft.Questions) == 0 {
		return nil, false, ErrNoQuestions
	}
	if e.mode == ModeEdit && e.ownerUID != ident.UID {
		return nil, false, apperrors.NewForbiddenError("Only the owner can edit this paper.")
	}

	title := strings.TrimSpace(e.draft.Title)
	if title == "" {
		title = deriveTitle(e.draft.CourseCode, e.draft.ExamYear, "")
	}

	doc = &models.PaperDoc{
		ID:            e.paperID,
		Title:         title,
		CourseCode:    e.draft.CourseCode,
		CourseName:    e.draft.CourseName,
		ExamDate:      e.draft.ExamDate,
		ExamYear:      e.draft.ExamYear,
		Status:        status,
		OwnerUID:      ident.UID,
		OwnerName:     cloneString(ident.DisplayName),
		OwnerPhotoURL: cloneString(ident.PhotoURL),
		Questions:     models.Questions(cloneQuestions(e.draft.Questions)),
		UniversityID:  cloneString(e.draft.UniversityID),
	}
	doc.UniversityName = e.universityName(ctx, doc.UniversityID)

	if e.mode == ModeEdit {
		err = e.papers.UpdatePaper(ctx, doc)
	} else {
		doc.ID = ""
		err = e.papers.CreatePaper(ctx, doc)
		created = true
	}
	if err != nil {
		return nil, false, err
	}

	e.mode = ModeEdit
	e.paperID = doc.ID
	e.ownerUID = ident.UID
	e.status = status
	e.draft.Title = title
	e.baseline = e.snapshot()
	return doc, created, nil
}

// universityName resolves the display name. A failed lookup keeps the id
// and leaves the name empty; classification is never required.
func (e *Engine) universityName(ctx context.Context, id *string) *string {
	if id == nil || *id == "" || e.universities == nil {
		return nil
	}
	u, err := e.universities.GetUniversity(ctx, *id)
	if err != nil {
		return nil
	}
	name := u.Name
	return &name
}

func (e *Engine) checkQuestion(index int) error {
	n := len(e.draft.Questions)
	if index < 0 || index >= n {
		return apperrors.NewValidationError(fmt.Sprintf("Question index %d is out of range (0-%d).", index, n-1))
	}
	return nil
}

func (e *Engine) snapshot() []byte {
	data, _ := json.Marshal(e.draft)
	return data
}

// deriveTitle builds "<code> <year> Exam", falling back to the filename
// without its .pdf extension, then to UntitledTitle.
func deriveTitle(code, year, filename string) string {
	code, year = strings.TrimSpace(code), strings.TrimSpace(year)
	if code != "" && year != "" {
		return code + " " + year + " Exam"
	}

	name := strings.TrimSpace(filename)
	if len(name) >= 4 && strings.EqualFold(name[len(name)-4:], ".pdf") {
		name = strings.TrimSpace(name[:len(name)-4])
	}
	if name != "" {
		return name
	}
	return UntitledTitle
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
