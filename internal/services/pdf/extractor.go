// Package pdf inspects and prepares exam PDFs before they are sent to the
// extraction backend.
//
// We use the ledongthuc/pdf library to read the document structure (page
// count and text layer) and pdfcpu to rewrite oversized files. Both are
// pure Go, so the server stays a single static binary.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF means the bytes do not start with the PDF magic header.
var ErrNotPDF = errors.New("file is not a PDF")

// Info describes an uploaded PDF.
type Info struct {
	PageCount int  // Number of pages
	WordCount int  // Words in the text layer
	HasText   bool // False for scanned papers that are images only
}

// Inspect opens the PDF and reports its page count and text layer.
//
// Go Pattern: We accept []byte instead of a filename because the data comes
// from an HTTP upload (in memory), not a file on disk. The pdf library
// needs an io.ReaderAt, which bytes.Reader provides.
func Inspect(data []byte) (info *Info, err error) {
	if !ValidatePDF(data) {
		return nil, ErrNotPDF
	}

	// The reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	info = &Info{PageCount: reader.NumPage()}
	for i := 1; i <= info.PageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only pages have no text layer; that is fine for the model
			continue
		}
		info.WordCount += countWords(text)
	}
	info.HasText = info.WordCount > 0

	return info, nil
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// Optimize rewrites the PDF with pdfcpu, dropping duplicate fonts and
// images and unused objects. The original bytes are returned when the
// optimised file is not smaller.
func Optimize(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to optimize PDF: %w", err)
	}
	if out.Len() >= len(data) {
		return data, nil
	}
	return out.Bytes(), nil
}
