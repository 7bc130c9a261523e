package extraction

import "github.com/Shimizu-Technology/paperhub-api/internal/apperrors"

// Input errors. They are reported before the backend is called and all
// wrap apperrors.ErrValidation, so handlers answer 400.
var (
	ErrNoInput         = apperrors.NewValidationError("No PDF data provided.")
	ErrInvalidEncoding = apperrors.NewValidationError("PDF data is not valid base64.")
	ErrNotPDF          = apperrors.NewValidationError("File is not a PDF.")
	ErrUnreadablePDF   = apperrors.NewValidationError("PDF could not be read.")
	ErrTooLarge        = apperrors.NewValidationError("PDF is too large.")
	ErrTooManyPages    = apperrors.NewValidationError("PDF has too many pages.")
)

// FailureKind classifies why the backend did not produce a paper.
type FailureKind string

const (
	// FailureBlocked: the backend returned no content, usually a safety block.
	FailureBlocked FailureKind = "blocked"
	// FailureInvalidJSON: the content was not parseable JSON.
	FailureInvalidJSON FailureKind = "invalid_json"
	// FailureSchemaMismatch: valid JSON in the wrong shape.
	FailureSchemaMismatch FailureKind = "schema_mismatch"
	// FailureTimeout: the call ran past the gateway timeout.
	FailureTimeout FailureKind = "timeout"
	// FailureBackend: transport or API error talking to the backend.
	FailureBackend FailureKind = "backend"
)

// Failure is an extraction that reached the backend but produced no
// usable paper. The caller may retry; nothing partial is ever returned.
type Failure struct {
	Kind   FailureKind
	Reason string // e.g. "SAFETY", "invalid_json", "timeout"
	Err    error  // underlying cause, if any
}

func (f *Failure) Error() string {
	if f.Kind == FailureInvalidJSON {
		return "Invalid JSON returned from AI"
	}
	return "Generation failed: " + f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}
