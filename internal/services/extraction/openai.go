package extraction

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// OpenAIBackend uses the OpenAI Responses API with a file input and a
// JSON-schema text format.
type OpenAIBackend struct {
	model string
	creds CredentialSource
}

func NewOpenAIBackend(model string, creds CredentialSource) *OpenAIBackend {
	return &OpenAIBackend{model: model, creds: creds}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := b.creds.APIKey(ctx)
	if err != nil {
		return nil, err
	}
	schema, err := schemaMap(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	filename := req.Filename
	if filename == "" {
		filename = "exam.pdf"
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: b.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentUnionParam{
							OfInputFile: &responses.ResponseInputFileParam{
								FileData: openai.String("data:application/pdf;base64," + base64.StdEncoding.EncodeToString(req.PDF)),
								Filename: openai.String(filename),
							},
						},
						responses.ResponseInputContentParamOfInputText(req.Prompt),
					},
					"user",
				),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("exam_paper", schema),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}

	return openAIResponse(response), nil
}

// openAIResponse flattens a Responses API result. A refusal comes back as
// a completed response with no output text, so it is reported by name.
func openAIResponse(r *responses.Response) *Response {
	for _, item := range r.Output {
		for _, content := range item.Content {
			if content.Type == "refusal" {
				return &Response{FinishReason: "refusal"}
			}
		}
	}

	resp := &Response{
		Text:         r.OutputText(),
		FinishReason: string(r.Status),
	}
	if r.IncompleteDetails.Reason != "" {
		resp.FinishReason = string(r.IncompleteDetails.Reason)
	}
	return resp
}
