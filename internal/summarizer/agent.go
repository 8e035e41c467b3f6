package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/drive-summary-pipeline/internal/analysis"
	"github.com/drive-summary-pipeline/internal/gemini"
)

// Tool names declared to the model
const (
	toolAnalyzeCSV = "analyze_csv"
	toolFilterRows = "filter_rows"
)

const agentPromptTemplate = `You are a data analyst. Analyze the following CSV data and provide CONCRETE insights.

DO NOT ask for clarification. DO NOT ask what kind of analysis. Just analyze and report.

Use the available tools to analyze this CSV data.
First, call analyze_csv to get a summary, then use filter_rows if needed, then carry out further analysis if you wish.

CSV Data:
%s

Provide your analysis in this format:
1. SUMMARY: Basic statistics (row count, columns)
2. DISTRIBUTIONS: Average, min, max, and standard deviation for each numeric column
3. TOP VALUES: Rows with the highest totals
4. PATTERNS: Any trends or correlations between columns
5. OUTLIERS: Notable values (unusually high or low)
6. RECOMMENDATIONS: Key observations

Be specific - use actual numbers from the data.`

// Agent runs a bounded tool loop: the model may call the local CSV helpers
// before producing its final answer.
type Agent struct {
	client        gemini.ClientInterface
	temperature   float64
	maxIterations int
}

// NewAgent creates an agent-mode summarizer
func NewAgent(client gemini.ClientInterface, temperature float64, maxIterations int) *Agent {
	if maxIterations < 1 {
		maxIterations = 5
	}
	return &Agent{
		client:        client,
		temperature:   temperature,
		maxIterations: maxIterations,
	}
}

// Summarize runs the tool loop until the model answers without function
// calls or the iteration cap is reached. Same substitute-string contract
// as the direct summarizer.
func (a *Agent) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	contents := []gemini.Content{
		{Role: "user", Parts: []gemini.Part{{Text: fmt.Sprintf(agentPromptTemplate, text)}}},
	}

	lastText := ""
	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		resp, err := a.client.GenerateContent(ctx, &gemini.GenerateRequest{
			Contents:         contents,
			Tools:            toolDeclarations(),
			GenerationConfig: &gemini.GenerationConfig{Temperature: a.temperature},
		})
		if errors.Is(err, gemini.ErrUnauthorized) {
			return AuthFailedText
		}
		if err != nil {
			return RequestFailedText
		}

		calls := gemini.FunctionCalls(resp)
		if len(calls) == 0 {
			summary := strings.TrimSpace(gemini.FirstCandidateText(resp))
			if summary == "" {
				return NoSummaryText
			}
			return summary
		}

		logrus.Debugf("Agent iteration %d: model requested %d tool calls", iteration, len(calls))
		if t := strings.TrimSpace(gemini.FirstCandidateText(resp)); t != "" {
			lastText = t
		}

		// Echo the model turn, then append one tool-result turn
		contents = append(contents, resp.Candidates[0].Content)

		var parts []gemini.Part
		for _, call := range calls {
			result := a.executeTool(call, text)
			logrus.Debugf("Tool %s returned %d bytes", call.Name, len(result))
			parts = append(parts, gemini.Part{
				FunctionResponse: &gemini.FunctionResponse{
					Name:     call.Name,
					Response: map[string]interface{}{"content": result},
				},
			})
		}
		contents = append(contents, gemini.Content{Role: "user", Parts: parts})
	}

	logrus.Warnf("Agent loop reached max iterations (%d)", a.maxIterations)
	if lastText != "" {
		return lastText
	}
	return NoSummaryText
}

// executeTool dispatches one model-requested call to the local helpers.
// The CSV text always comes from the file being processed, never from the
// model.
func (a *Agent) executeTool(call *gemini.FunctionCall, csvText string) string {
	switch call.Name {
	case toolAnalyzeCSV:
		query, _ := call.Args["query"].(string)
		return analysis.Analyze(csvText, query)
	case toolFilterRows:
		column, _ := call.Args["column"].(string)
		operator, _ := call.Args["operator"].(string)
		value, _ := call.Args["value"].(string)
		return analysis.Filter(csvText, column, operator, value)
	default:
		return fmt.Sprintf("Error: unknown tool '%s'", call.Name)
	}
}

func toolDeclarations() []gemini.Tool {
	return []gemini.Tool{{
		FunctionDeclarations: []gemini.FunctionDeclaration{
			{
				Name:        toolAnalyzeCSV,
				Description: "Analyzes the CSV data and extracts key statistics or insights based on the query.",
				Parameters: &gemini.Schema{
					Type: "object",
					Properties: map[string]*gemini.Schema{
						"query": {
							Type:        "string",
							Description: "The analysis query, e.g. 'summary', 'describe <column>', 'correlation'.",
						},
					},
					Required: []string{"query"},
				},
			},
			{
				Name:        toolFilterRows,
				Description: "Filters the CSV data rows based on a condition and returns the matching rows as CSV.",
				Parameters: &gemini.Schema{
					Type: "object",
					Properties: map[string]*gemini.Schema{
						"column": {
							Type:        "string",
							Description: "Column to filter on.",
						},
						"operator": {
							Type:        "string",
							Description: "Comparison operator: ==, !=, >, <, >=, <=.",
						},
						"value": {
							Type:        "string",
							Description: "Value to compare against.",
						},
					},
					Required: []string{"column", "operator", "value"},
				},
			},
		},
	}}
}
