package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
)

// ParseQuery is the tool input. Exactly one source is used; file_path
// wins when both are set.
type ParseQuery struct {
	FilePath   string `json:"file_path,omitempty" jsonschema:"path to an exam PDF on this machine"`
	FileBase64 string `json:"file_base64,omitempty" jsonschema:"the PDF as base64, optionally a data URI"`
}

// ParseTool describes parse-exam-paper.
func ParseTool() *mcp.Tool {
	inputSchema, err := jsonschema.For[ParseQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "parse-exam-paper",
		Description: "Extract an exam paper PDF into structured JSON: course metadata, questions, sub-questions, marks, figures and LaTeX equations",
		InputSchema: inputSchema,
	}
}

// parseHandler runs the extraction gateway for one tool call.
type parseHandler struct {
	gateway *extraction.Gateway
}

func (p *parseHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, query ParseQuery) (*mcp.CallToolResult, *models.ParsedPaper, error) {
	var (
		data     []byte
		filename string
		err      error
	)
	switch {
	case query.FilePath != "":
		data, err = os.ReadFile(query.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", query.FilePath, err)
		}
		filename = filepath.Base(query.FilePath)
	case query.FileBase64 != "":
		data, err = extraction.DecodeBase64(query.FileBase64)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, errors.New("provide file_path or file_base64")
	}

	paper, err := p.gateway.Extract(ctx, data, filename)
	if err != nil {
		return nil, nil, err
	}

	subs := 0
	for _, q := range paper.Questions {
		subs += len(q.SubQuestions)
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Parsed %s %s: %d questions, %d sub-questions.",
					paper.CourseCode, paper.ExamYear, len(paper.Questions), subs),
			},
		},
	}
	return result, paper, nil
}
