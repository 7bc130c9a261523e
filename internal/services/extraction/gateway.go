// Package extraction turns an exam PDF into a validated ParsedPaper using a
// generative model constrained by a JSON Schema.
//
// Go Pattern: The model provider sits behind the small Backend interface.
// The Gateway owns everything provider-independent: input checks, the
// prompt, the schema, the timeout and the validation of what comes back.
// Swapping Gemini for OpenAI is a constructor argument, and tests plug in
// a fake.
package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/pdf"
)

// DefaultTimeout is generous: multi-page scans take minutes.
const DefaultTimeout = 5 * time.Minute

// Request is what the Gateway hands to a Backend.
type Request struct {
	PDF      []byte
	Filename string
	Prompt   string
	Schema   *jsonschema.Schema
}

// Response is the raw backend answer. Text is empty when the backend
// produced no content, and FinishReason then says why.
type Response struct {
	Text         string
	FinishReason string
}

// Backend calls one model provider.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Options tunes the Gateway.
type Options struct {
	Timeout  time.Duration
	MaxBytes int  // 0 = unlimited
	MaxPages int  // 0 = unlimited
	Optimize bool // rewrite the PDF with pdfcpu before upload
}

// Gateway validates input, calls the backend and validates its output.
type Gateway struct {
	backend  Backend
	opts     Options
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	log      zerolog.Logger
}

// NewGateway resolves the exam schema once and returns a ready Gateway.
func NewGateway(backend Backend, opts Options, log zerolog.Logger) (*Gateway, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	schema := ExamSchema()
	resolved, err := ExamSchema().Resolve(nil)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		backend:  backend,
		opts:     opts,
		schema:   schema,
		resolved: resolved,
		log:      log,
	}, nil
}

// Provider names the backend in use.
func (g *Gateway) Provider() string {
	return g.backend.Name()
}

// DecodeBase64 strips an optional data-URI prefix (everything up to and
// including the first comma) and decodes the rest.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrNoInput
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	if len(data) == 0 {
		return nil, ErrNoInput
	}
	return data, nil
}

// ExtractBase64 decodes a base64 (or data-URI) payload and extracts it.
func (g *Gateway) ExtractBase64(ctx context.Context, payload, filename string) (*models.ParsedPaper, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return g.Extract(ctx, data, filename)
}

// Check runs the input checks without calling the backend and returns
// the PDF's page count (0 when it was not inspected).
func (g *Gateway) Check(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrNoInput
	}
	if g.opts.MaxBytes > 0 && len(data) > g.opts.MaxBytes {
		return 0, ErrTooLarge
	}
	if !pdf.ValidatePDF(data) {
		return 0, ErrNotPDF
	}

	info, err := pdf.Inspect(data)
	if err != nil {
		if g.opts.MaxPages > 0 {
			return 0, ErrUnreadablePDF
		}
		// The model copes with files our reader chokes on
		g.log.Debug().Err(err).Msg("PDF inspection failed, sending as is")
		return 0, nil
	}
	if g.opts.MaxPages > 0 && info.PageCount > g.opts.MaxPages {
		return info.PageCount, ErrTooManyPages
	}
	return info.PageCount, nil
}

// Extract sends the PDF to the backend and returns the validated paper.
// Input problems come back as validation errors, backend problems as
// *Failure, and a cancelled ctx as ctx.Err().
func (g *Gateway) Extract(ctx context.Context, data []byte, filename string) (*models.ParsedPaper, error) {
	pages, err := g.Check(data)
	if err != nil {
		return nil, err
	}

	if g.opts.Optimize {
		if optimized, err := pdf.Optimize(data); err != nil {
			g.log.Warn().Err(err).Msg("⚠️  PDF optimization failed, sending original")
		} else {
			data = optimized
		}
	}

	log := g.log.With().Str("provider", g.backend.Name()).Int("pages", pages).Int("bytes", len(data)).Logger()
	log.Info().Msg("🤖 Extracting exam paper")
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	resp, err := g.backend.Generate(callCtx, Request{
		PDF:      data,
		Filename: filename,
		Prompt:   ParsePrompt,
		Schema:   g.schema,
	})
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil:
			log.Error().Dur("elapsed", time.Since(start)).Msg("❌ Extraction timed out")
			return nil, &Failure{Kind: FailureTimeout, Reason: "timeout", Err: err}
		default:
			log.Error().Err(err).Msg("❌ Extraction backend error")
			return nil, &Failure{Kind: FailureBackend, Reason: "backend_error", Err: err}
		}
	}

	paper, err := g.parse(resp)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			log.Error().Str("kind", string(f.Kind)).Str("reason", f.Reason).Msg("❌ Extraction failed")
		}
		return nil, err
	}

	log.Info().
		Int("questions", len(paper.Questions)).
		Dur("elapsed", time.Since(start)).
		Msg("✅ Exam paper extracted")
	return paper, nil
}

// parse turns the backend response into a paper. No partial recovery: a
// response is either fully valid or a Failure.
func (g *Gateway) parse(resp *Response) (*models.ParsedPaper, error) {
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		reason := "UNKNOWN"
		if resp != nil && resp.FinishReason != "" {
			reason = resp.FinishReason
		}
		return nil, &Failure{Kind: FailureBlocked, Reason: reason}
	}

	text := stripCodeFence(resp.Text)

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &Failure{Kind: FailureInvalidJSON, Reason: "invalid_json", Err: err}
	}
	if err := g.resolved.Validate(raw); err != nil {
		return nil, &Failure{Kind: FailureSchemaMismatch, Reason: "schema_mismatch", Err: err}
	}

	var paper models.ParsedPaper
	if err := json.Unmarshal([]byte(text), &paper); err != nil {
		return nil, &Failure{Kind: FailureSchemaMismatch, Reason: "schema_mismatch", Err: err}
	}
	paper.Normalize()
	return &paper, nil
}

// stripCodeFence removes a ```json ... ``` wrapper. Providers without
// native structured output sometimes add one despite the instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
