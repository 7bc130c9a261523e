package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/responses"
	"google.golang.org/genai"
)

func TestOpenRouterBackend(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"{\"questions\":[]}"}}]}`))
	}))
	defer srv.Close()

	b := NewOpenRouterBackend("test/model", StaticCredential("sk-test"), 5*time.Second).WithEndpoint(srv.URL)
	resp, err := b.Generate(context.Background(), Request{PDF: fakePDF, Prompt: "parse", Schema: ExamSchema()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if resp.Text != `{"questions":[]}` || resp.FinishReason != "stop" {
		t.Errorf("response = %+v", resp)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != "test/model" || got.ResponseFormat == nil || got.ResponseFormat.Type != "json_schema" {
		t.Errorf("request = %+v", got)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 || parts[1].File == nil || !strings.HasPrefix(parts[1].File.FileData, "data:application/pdf;base64,") {
		t.Errorf("content parts = %+v", parts)
	}
	if parts[1].File.Filename != "exam.pdf" {
		t.Errorf("default filename = %q", parts[1].File.Filename)
	}
}

func TestOpenRouterBackendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key","code":401}}`))
	}))
	defer srv.Close()

	b := NewOpenRouterBackend("m", StaticCredential("bad"), 5*time.Second).WithEndpoint(srv.URL)
	_, err := b.Generate(context.Background(), Request{PDF: fakePDF})
	if err == nil || !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("error = %v, want OpenRouter error message", err)
	}
}

func TestGeminiResponse(t *testing.T) {
	tests := []struct {
		name       string
		result     *genai.GenerateContentResponse
		wantText   string
		wantReason string
	}{
		{
			name: "text across parts",
			result: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonStop,
				Content:      &genai.Content{Parts: []*genai.Part{{Text: `{"a":`}, {Text: `1}`}}},
			}}},
			wantText:   `{"a":1}`,
			wantReason: "STOP",
		},
		{
			name: "safety block",
			result: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			wantReason: "SAFETY",
		},
		{
			name: "prompt blocked",
			result: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantReason: "SAFETY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geminiResponse(tt.result)
			if got.Text != tt.wantText || got.FinishReason != tt.wantReason {
				t.Errorf("geminiResponse() = %+v, want text %q reason %q", got, tt.wantText, tt.wantReason)
			}
		})
	}
}

func TestOpenAIResponse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantText   string
		wantReason string
	}{
		{
			name: "output text",
			body: `{"status":"completed","output":[{"type":"message","content":[
				{"type":"output_text","text":"{\"a\":"},{"type":"output_text","text":"1}"}]}]}`,
			wantText:   `{"a":1}`,
			wantReason: "completed",
		},
		{
			name: "refusal",
			body: `{"status":"completed","output":[{"type":"message","content":[
				{"type":"refusal","refusal":"I can't help with that."}]}]}`,
			wantReason: "refusal",
		},
		{
			name:       "truncated",
			body:       `{"status":"incomplete","incomplete_details":{"reason":"max_output_tokens"},"output":[]}`,
			wantReason: "max_output_tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r responses.Response
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatal(err)
			}
			got := openAIResponse(&r)
			if got.Text != tt.wantText || got.FinishReason != tt.wantReason {
				t.Errorf("openAIResponse() = %+v, want text %q reason %q", got, tt.wantText, tt.wantReason)
			}
		})
	}
}

func TestCredentialSources(t *testing.T) {
	ctx := context.Background()

	t.Run("env value", func(t *testing.T) {
		t.Setenv("PAPERHUB_TEST_KEY", " key-from-env ")
		got, err := EnvCredential{Name: "PAPERHUB_TEST_KEY"}.APIKey(ctx)
		if err != nil || got != "key-from-env" {
			t.Errorf("APIKey() = %q, %v", got, err)
		}
	})

	t.Run("env file fallback is read on every call", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key")
		os.WriteFile(path, []byte("first\n"), 0o600)
		t.Setenv("PAPERHUB_TEST_KEY", "")
		t.Setenv("PAPERHUB_TEST_KEY_FILE", path)

		src := EnvCredential{Name: "PAPERHUB_TEST_KEY"}
		if got, _ := src.APIKey(ctx); got != "first" {
			t.Errorf("APIKey() = %q, want first", got)
		}
		os.WriteFile(path, []byte("rotated"), 0o600)
		if got, _ := src.APIKey(ctx); got != "rotated" {
			t.Errorf("APIKey() after rotation = %q", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("PAPERHUB_TEST_KEY", "")
		t.Setenv("PAPERHUB_TEST_KEY_FILE", "")
		if _, err := (EnvCredential{Name: "PAPERHUB_TEST_KEY"}).APIKey(ctx); err == nil {
			t.Error("expected an error for a missing key")
		}
		if _, err := StaticCredential("").APIKey(ctx); err == nil {
			t.Error("expected an error for an empty static key")
		}
	})
}
