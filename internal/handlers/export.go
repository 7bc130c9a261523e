// export.go handles paper export in multiple formats.
//
// Supported formats:
//   - md: Markdown with a metadata table and $$-delimited equations
//   - txt: Plain text for printing
//   - json: The full PaperDoc
//
// Go Pattern: Each export format is its own function. This makes it easy
// to add new formats later: add a case to the switch and a new formatter
// function. This is the "Strategy pattern" without the ceremony.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// ExportPaper downloads a visible paper in the requested format.
// GET /api/v1/papers/:id/export?format=md|txt|json
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportPaper(c *gin.Context) {
	format := c.DefaultQuery("format", "md")

	// Validate format before doing any store work
	validFormats := map[string]bool{"md": true, "txt": true, "json": true}
	if !validFormats[format] {
		writeError(c, http.StatusBadRequest, "invalid_format", "Supported formats: md, txt, json")
		return
	}

	paper, err := h.visiblePaper(c)
	if err != nil {
		h.respondError(c, err, "export paper")
		return
	}

	// Go Pattern: We sanitize the title for use in filenames. This prevents
	// issues with special characters in Content-Disposition headers.
	filename := sanitizeFilename(paper.Title)
	if filename == "" {
		filename = "paper-" + paper.ID
	}

	switch format {
	case "md":
		download(c, filename+".md", "text/markdown; charset=utf-8", []byte(renderMarkdown(paper)))
	case "txt":
		download(c, filename+".txt", "text/plain; charset=utf-8", []byte(renderText(paper)))
	case "json":
		data, err := json.MarshalIndent(paper, "", "  ")
		if err != nil {
			h.respondError(c, err, "export paper")
			return
		}
		download(c, filename+".json", "application/json", data)
	}
}

func download(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}

// renderMarkdown lays the paper out as a Markdown document.
func renderMarkdown(p *models.PaperDoc) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", p.Title))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Course | %s |\n", joinNonEmpty(" · ", p.CourseCode, p.CourseName)))
	if p.UniversityName != nil && *p.UniversityName != "" {
		sb.WriteString(fmt.Sprintf("| University | %s |\n", *p.UniversityName))
	}
	if date := joinNonEmpty(" ", p.ExamDate, p.ExamYear); date != "" {
		sb.WriteString(fmt.Sprintf("| Exam | %s |\n", date))
	}
	sb.WriteString(fmt.Sprintf("| Questions | %d |\n", len(p.Questions)))
	sb.WriteString("\n---\n")

	for _, q := range p.Questions {
		sb.WriteString(fmt.Sprintf("\n## Question %s%s\n\n", q.QuestionNumber, marksSuffix(q.Marks)))
		writeMarkdownBody(&sb, q.Text, q.Figures, q.Equations)
		for _, sq := range q.SubQuestions {
			sb.WriteString(fmt.Sprintf("\n### (%s)%s\n\n", sq.SubNumber, marksSuffix(sq.Marks)))
			writeMarkdownBody(&sb, sq.Text, sq.Figures, sq.Equations)
		}
	}
	return sb.String()
}

func writeMarkdownBody(sb *strings.Builder, text string, figures []models.Figure, equations []models.Equation) {
	if text != "" {
		sb.WriteString(text + "\n")
	}
	for _, eq := range equations {
		sb.WriteString(fmt.Sprintf("\n$$%s$$\n", eq.Latex))
		if eq.Description != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", eq.Description))
		}
	}
	for _, f := range figures {
		sb.WriteString(fmt.Sprintf("\n> **%s:** %s\n", f.Label, f.Description))
	}
}

// renderText is the printable form: no markup, equations as raw LaTeX.
func renderText(p *models.PaperDoc) string {
	var sb strings.Builder

	sb.WriteString(p.Title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(p.Title))) + "\n")
	if course := joinNonEmpty(" - ", p.CourseCode, p.CourseName); course != "" {
		sb.WriteString(course + "\n")
	}
	if p.UniversityName != nil && *p.UniversityName != "" {
		sb.WriteString(*p.UniversityName + "\n")
	}
	if date := joinNonEmpty(" ", p.ExamDate, p.ExamYear); date != "" {
		sb.WriteString(date + "\n")
	}

	for _, q := range p.Questions {
		sb.WriteString(fmt.Sprintf("\nQuestion %s%s\n", q.QuestionNumber, marksSuffix(q.Marks)))
		writeTextBody(&sb, "", q.Text, q.Figures, q.Equations)
		for _, sq := range q.SubQuestions {
			sb.WriteString(fmt.Sprintf("\n  (%s)%s\n", sq.SubNumber, marksSuffix(sq.Marks)))
			writeTextBody(&sb, "  ", sq.Text, sq.Figures, sq.Equations)
		}
	}
	return sb.String()
}

func writeTextBody(sb *strings.Builder, indent, text string, figures []models.Figure, equations []models.Equation) {
	if text != "" {
		sb.WriteString(indent + text + "\n")
	}
	for _, eq := range equations {
		sb.WriteString(indent + "  " + eq.Latex + "\n")
	}
	for _, f := range figures {
		sb.WriteString(fmt.Sprintf("%s  [%s] %s\n", indent, f.Label, f.Description))
	}
}

// marksSuffix renders " (10 marks)", " (1 mark)" or nothing when unknown.
func marksSuffix(marks *float64) string {
	if marks == nil {
		return ""
	}
	n := strconv.FormatFloat(*marks, 'f', -1, 64)
	if *marks == 1 {
		return " (" + n + " mark)"
	}
	return " (" + n + " marks)"
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple. Replace unsafe characters with hyphens
// and trim the result; this only feeds the Content-Disposition header.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length without cutting a multi-byte character in half
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}

	return name
}
