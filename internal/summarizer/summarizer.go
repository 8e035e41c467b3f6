package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drive-summary-pipeline/internal/gemini"
)

// Substitute strings returned instead of errors. The pipeline embeds these
// in output records; no failure propagates past the summarizer boundary.
const (
	NoSummaryText     = "No summary generated"
	AuthFailedText    = "Error: Gemini API authentication failed (HTTP 401)"
	RequestFailedText = "Error: summarization request failed"
)

const directPromptTemplate = `You are a data analyst. Analyze the following CSV data and provide CONCRETE insights.

DO NOT ask for clarification. DO NOT ask what kind of analysis. Just analyze and report.

CSV Data:
%s

Provide a concise summary covering row and column counts, notable statistics, top values, and any visible trends. Be specific - use actual numbers from the data.`

// Summarizer produces a summary for decoded file text. Implementations
// never return an error; failures degrade to a substitute string.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Direct issues a single generateContent call per file
type Direct struct {
	client      gemini.ClientInterface
	temperature float64
}

// NewDirect creates a direct summarizer
func NewDirect(client gemini.ClientInterface, temperature float64) *Direct {
	return &Direct{
		client:      client,
		temperature: temperature,
	}
}

// Summarize returns the first candidate's text, or a substitute string on
// failure. Empty input short-circuits without calling the API.
func (d *Direct) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	req := &gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: fmt.Sprintf(directPromptTemplate, text)}}},
		},
		GenerationConfig: &gemini.GenerationConfig{Temperature: d.temperature},
	}

	resp, err := d.client.GenerateContent(ctx, req)
	if errors.Is(err, gemini.ErrUnauthorized) {
		return AuthFailedText
	}
	if err != nil {
		return RequestFailedText
	}

	summary := strings.TrimSpace(gemini.FirstCandidateText(resp))
	if summary == "" {
		return NoSummaryText
	}
	return summary
}
