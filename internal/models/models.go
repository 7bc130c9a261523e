// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with tags for serialization. The
// `json` tags shape the API, `db` tags map sqlx columns and `bson` tags map
// MongoDB fields. No ORM: the store packages handle persistence.
package models

// ExtractRequest carries a PDF as base64, optionally as a data URI.
type ExtractRequest struct {
	FileBase64 string `json:"fileBase64"`
	Filename   string `json:"filename"`
}

// ExtractErrorResponse is the minimal `{ "error": ... }` body of the
// stateless extract endpoint.
type ExtractErrorResponse struct {
	Error string `json:"error"`
}

// DraftView is the client-facing snapshot of the caller's editing session.
type DraftView struct {
	Mode           string      `json:"mode"` // "create" or "edit"
	PaperID        string      `json:"paperId,omitempty"`
	Status         PaperStatus `json:"status,omitempty"`
	Title          string      `json:"title"`
	CourseCode     string      `json:"courseCode"`
	CourseName     string      `json:"courseName"`
	ExamDate       string      `json:"examDate"`
	ExamYear       string      `json:"examYear"`
	UniversityID   *string     `json:"universityId"`
	Questions      []Question  `json:"questions"`
	SelectedIndex  int         `json:"selectedIndex"`
	Dirty          bool        `json:"dirty"`
	QuestionsCount int         `json:"questionsCount"`
}

// SelectionRequest moves the draft's selection cursor.
type SelectionRequest struct {
	Index *int `json:"index" binding:"required"`
}

// TextRequest replaces a question or sub-question text.
type TextRequest struct {
	Text *string `json:"text" binding:"required"`
}

// DraftMetadataRequest edits the draft header. Nil fields are left alone.
type DraftMetadataRequest struct {
	Title        *string `json:"title"`
	CourseCode   *string `json:"courseCode"`
	CourseName   *string `json:"courseName"`
	ExamDate     *string `json:"examDate"`
	ExamYear     *string `json:"examYear"`
	UniversityID *string `json:"universityId"`
	// ClearUniversity removes the university link; a JSON null cannot be
	// told apart from a missing key.
	ClearUniversity bool `json:"clearUniversity"`
}

// SaveDraftRequest persists the draft with the given status.
type SaveDraftRequest struct {
	Status PaperStatus `json:"status" binding:"required"`
}

// SaveDraftResponse returns the stored paper and the refreshed draft.
type SaveDraftResponse struct {
	Paper   *PaperDoc `json:"paper"`
	Draft   DraftView `json:"draft"`
	Created bool      `json:"created"`
}

// AdoptRequest adds a published paper to the caller's workspace.
type AdoptRequest struct {
	PaperID string `json:"paperId" binding:"required"`
}

// AdoptResponse reports the AnswerDoc and whether it was just created.
type AdoptResponse struct {
	Answer  *AnswerDoc `json:"answer"`
	Created bool       `json:"created"`
}

// AnswerUpdateRequest replaces answers and/or the title of an AnswerDoc.
type AnswerUpdateRequest struct {
	Answers *[]AnswerQuestion `json:"answers"`
	Title   *string           `json:"title"`
}

// AnswerTextRequest sets a single answer slot.
type AnswerTextRequest struct {
	Answer *string `json:"answer" binding:"required"`
}

// AnswerDetailResponse pairs an AnswerDoc with the paper it came from.
// Paper is nil when the source paper was deleted after adoption.
type AnswerDetailResponse struct {
	Answer *AnswerDoc `json:"answer"`
	Paper  *PaperDoc  `json:"paper"`
}

// WorkspaceStatusResponse tells whether the caller already adopted a paper.
type WorkspaceStatusResponse struct {
	InWorkspace bool   `json:"inWorkspace"`
	AnswerID    string `json:"answerId,omitempty"`
}

// NameRequest is used for university and course names.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListResponse wraps a list with its length.
// Go Pattern: Generics (added in Go 1.18) let us create type-safe
// containers. `any` is an alias for `interface{}`.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// NewListResponse never returns a nil Data slice so clients always get [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Count: len(items)}
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Store    string `json:"store"`
	Database string `json:"database"`
	Provider string `json:"provider"`
	Workers  int    `json:"workers"`
	Queue    int    `json:"queue"`
}
