package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterBackend talks to OpenRouter's OpenAI-compatible chat
// completions endpoint, which routes to many providers behind one key.
type OpenRouterBackend struct {
	model      string
	creds      CredentialSource
	endpoint   string
	httpClient *http.Client
}

// NewOpenRouterBackend creates the backend. timeout bounds a single HTTP
// call and should be at least the gateway timeout.
func NewOpenRouterBackend(model string, creds CredentialSource, timeout time.Duration) *OpenRouterBackend {
	return &OpenRouterBackend{
		model:    model,
		creds:    creds,
		endpoint: openRouterURL,
		// Go Pattern: Always configure timeouts on HTTP clients.
		// The default http.Client has NO timeout, so requests can hang forever!
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithEndpoint points the backend at another URL (tests, self-hosted proxies).
func (b *OpenRouterBackend) WithEndpoint(url string) *OpenRouterBackend {
	b.endpoint = url
	return b
}

func (b *OpenRouterBackend) Name() string { return "openrouter" }

// --- OpenRouter API types ---
// These match the OpenAI chat completions format used by OpenRouter.

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string    `json:"type"` // "text" or "file"
	Text string    `json:"text,omitempty"`
	File *filePart `json:"file,omitempty"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type responseFormat struct {
	Type       string         `json:"type"`
	JSONSchema jsonSchemaSpec `json:"json_schema"`
}

type jsonSchemaSpec struct {
	Name   string `json:"name"`
	Strict bool   `json:"strict"`
	Schema any    `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (b *OpenRouterBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := b.creds.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	filename := req.Filename
	if filename == "" {
		filename = "exam.pdf"
	}

	reqBody := chatRequest{
		Model: b.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "file", File: &filePart{
					Filename: filename,
					FileData: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(req.PDF),
				}},
			},
		}},
		ResponseFormat: &responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchemaSpec{Name: "exam_paper", Schema: req.Schema},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://github.com/Shimizu-Technology/paperhub-api")
	httpReq.Header.Set("X-Title", "PaperHub")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenRouter error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter returned HTTP %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return &Response{FinishReason: "no_choices"}, nil
	}

	choice := chatResp.Choices[0]
	return &Response{Text: choice.Message.Content, FinishReason: choice.FinishReason}, nil
}
