package extraction

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiBackend calls Google's Gemini API with the PDF as inline data and
// the exam schema as the response JSON schema.
type GeminiBackend struct {
	model string
	creds CredentialSource
}

// NewGeminiBackend creates a Gemini backend. A client is built per call
// so a rotated key takes effect immediately.
func NewGeminiBackend(model string, creds CredentialSource) *GeminiBackend {
	return &GeminiBackend{model: model, creds: creds}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := b.creds.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: req.Prompt},
			{InlineData: &genai.Blob{Data: req.PDF, MIMEType: "application/pdf"}},
		},
	}}

	result, err := client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: req.Schema,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	return geminiResponse(result), nil
}

// geminiResponse reads the first candidate's text. An empty Text with a
// FinishReason (e.g. "SAFETY") means the model refused.
func geminiResponse(result *genai.GenerateContentResponse) *Response {
	if result == nil {
		return &Response{}
	}
	if len(result.Candidates) == 0 {
		resp := &Response{}
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			resp.FinishReason = string(result.PromptFeedback.BlockReason)
		}
		return resp
	}

	candidate := result.Candidates[0]
	resp := &Response{FinishReason: string(candidate.FinishReason)}
	if candidate.Content == nil {
		return resp
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	resp.Text = text.String()
	return resp
}
