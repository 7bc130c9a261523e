package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/logger"
)

// fakePDF has the right header; the gateway does not need a real document
// unless a page limit is configured.
var fakePDF = []byte("%PDF-1.4\n% test document\n%%EOF\n")

// fakeBackend returns a canned response and records calls.
type fakeBackend struct {
	resp  *Response
	err   error
	delay time.Duration
	calls int
	last  Request
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	f.calls++
	f.last = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func newTestGateway(t *testing.T, b Backend, opts Options) *Gateway {
	t.Helper()
	g, err := NewGateway(b, opts, logger.Nop())
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	return g
}

const twoQuestions = `{
  "course_code": "CS101",
  "course_name": "Introduction to Computing",
  "exam_date": "2024-06-23",
  "exam_year": "2024",
  "questions": [
    {
      "question_number": "1",
      "text": "Answer the following.",
      "marks": 20,
      "figures": [{"label": "Figure 1", "description": "A binary tree"}],
      "equations": [],
      "sub_questions": [
        {"sub_number": "(a)", "text": "Define recursion.", "marks": 5},
        {"sub_number": "(b)", "text": "Give an example.", "marks": null}
      ]
    },
    {
      "question_number": "2",
      "text": "Evaluate the integral.",
      "equations": [{"latex": "\\int_0^1 x^2 \\, dx", "description": "área {bajo} la curva"}]
    }
  ]
}`

func TestExtractSuccess(t *testing.T) {
	backend := &fakeBackend{resp: &Response{Text: twoQuestions, FinishReason: "STOP"}}
	g := newTestGateway(t, backend, Options{})

	paper, err := g.Extract(context.Background(), fakePDF, "cs101.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(paper.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(paper.Questions))
	}
	if n := len(paper.Questions[0].SubQuestions); n != 2 {
		t.Errorf("question 1 has %d sub-questions, want 2", n)
	}
	if paper.Questions[0].SubQuestions[0].SubNumber != "(a)" {
		t.Errorf("sub_number = %q, want (a) verbatim", paper.Questions[0].SubQuestions[0].SubNumber)
	}
	if paper.Questions[0].SubQuestions[1].Marks != nil {
		t.Error("null marks should stay nil")
	}

	// Absent collections come back empty, never nil
	q2 := paper.Questions[1]
	if q2.Figures == nil || q2.SubQuestions == nil || q2.Marks != nil {
		t.Errorf("question 2 not normalized: %+v", q2)
	}
	if got := q2.Equations[0].Latex; got != `\int_0^1 x^2 \, dx` {
		t.Errorf("latex = %q", got)
	}
	if got := q2.Equations[0].Description; got != "área {bajo} la curva" {
		t.Errorf("description = %q", got)
	}

	if backend.last.Prompt != ParsePrompt || backend.last.Schema == nil {
		t.Error("backend did not receive the prompt and schema")
	}
	if backend.last.Filename != "cs101.pdf" {
		t.Errorf("filename = %q", backend.last.Filename)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		wantKind   FailureKind
		wantReason string
		wantMsg    string
	}{
		{
			name:       "safety block",
			backend:    &fakeBackend{resp: &Response{FinishReason: "SAFETY"}},
			wantKind:   FailureBlocked,
			wantReason: "SAFETY",
			wantMsg:    "Generation failed: SAFETY",
		},
		{
			name:       "no reason given",
			backend:    &fakeBackend{resp: &Response{}},
			wantKind:   FailureBlocked,
			wantReason: "UNKNOWN",
			wantMsg:    "Generation failed: UNKNOWN",
		},
		{
			name:       "malformed json",
			backend:    &fakeBackend{resp: &Response{Text: `{"course_code": "CS1", "questions": [`}},
			wantKind:   FailureInvalidJSON,
			wantReason: "invalid_json",
			wantMsg:    "Invalid JSON returned from AI",
		},
		{
			name:       "missing required field",
			backend:    &fakeBackend{resp: &Response{Text: `{"course_code": "CS1", "course_name": "X"}`}},
			wantKind:   FailureSchemaMismatch,
			wantReason: "schema_mismatch",
		},
		{
			name:       "wrong type",
			backend:    &fakeBackend{resp: &Response{Text: `{"course_code": "CS1", "course_name": "X", "questions": [{"question_number": 1, "text": "t"}]}`}},
			wantKind:   FailureSchemaMismatch,
			wantReason: "schema_mismatch",
		},
		{
			name:       "transport error",
			backend:    &fakeBackend{err: errors.New("connection reset")},
			wantKind:   FailureBackend,
			wantReason: "backend_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, tt.backend, Options{})
			paper, err := g.Extract(context.Background(), fakePDF, "")

			if paper != nil {
				t.Fatal("a failure must not return a partial paper")
			}
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("error = %v, want *Failure", err)
			}
			if f.Kind != tt.wantKind || f.Reason != tt.wantReason {
				t.Errorf("got %s/%s, want %s/%s", f.Kind, f.Reason, tt.wantKind, tt.wantReason)
			}
			if tt.wantMsg != "" && f.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", f.Error(), tt.wantMsg)
			}
			if errors.Is(err, apperrors.ErrValidation) {
				t.Error("backend failures must not look like input errors")
			}
		})
	}
}

func TestExtractTimeout(t *testing.T) {
	backend := &fakeBackend{resp: &Response{Text: twoQuestions}, delay: time.Second}
	g := newTestGateway(t, backend, Options{Timeout: 20 * time.Millisecond})

	_, err := g.Extract(context.Background(), fakePDF, "")

	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureTimeout || f.Reason != "timeout" {
		t.Fatalf("error = %v, want timeout failure", err)
	}
}

func TestExtractCallerCancel(t *testing.T) {
	backend := &fakeBackend{resp: &Response{Text: twoQuestions}, delay: time.Second}
	g := newTestGateway(t, backend, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Extract(ctx, fakePDF, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestInputRejectedBeforeBackend(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		opts    Options
		want    error
	}{
		{"empty payload", "", Options{}, ErrNoInput},
		{"blank payload", "   ", Options{}, ErrNoInput},
		{"bad base64", "data:application/pdf;base64,!!!", Options{}, ErrInvalidEncoding},
		{"not a pdf", base64.StdEncoding.EncodeToString([]byte("PK\x03\x04 zip")), Options{}, ErrNotPDF},
		{"too large", base64.StdEncoding.EncodeToString(fakePDF), Options{MaxBytes: 8}, ErrTooLarge},
		{"unreadable with page limit", base64.StdEncoding.EncodeToString(fakePDF), Options{MaxPages: 10}, ErrUnreadablePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{resp: &Response{Text: twoQuestions}}
			g := newTestGateway(t, backend, tt.opts)

			_, err := g.ExtractBase64(context.Background(), tt.payload, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Error("input errors must wrap ErrValidation")
			}
			if backend.calls != 0 {
				t.Errorf("backend called %d times", backend.calls)
			}
		})
	}
}

func TestDecodeBase64StripsDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(fakePDF)

	for _, payload := range []string{encoded, "data:application/pdf;base64," + encoded} {
		data, err := DecodeBase64(payload)
		if err != nil {
			t.Fatalf("DecodeBase64(%.30q) error = %v", payload, err)
		}
		if string(data) != string(fakePDF) {
			t.Errorf("decoded %q", data)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  \n{\"a\":1}\n  ":       `{"a":1}`,
	}
	for in, want := range tests {
		if got := stripCodeFence(in); got != want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExamSchemaShape(t *testing.T) {
	data, err := json.Marshal(ExamSchema())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"course_code"`, `"sub_questions"`, `"latex"`, `"null"`} {
		if !strings.Contains(s, want) {
			t.Errorf("schema JSON missing %s", want)
		}
	}

	m, err := schemaMap(ExamSchema())
	if err != nil || m["type"] != "object" {
		t.Errorf("schemaMap() = %v, %v", m["type"], err)
	}
}
