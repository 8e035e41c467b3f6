package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized indicates the API key was rejected (HTTP 401).
var ErrUnauthorized = errors.New("gemini: unauthorized")

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Gemini generateContent API
type Client struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// Content is a single conversation turn
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of a content turn: text, a model-issued function call,
// or a function result sent back to the model.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is a tool invocation requested by the model
type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// FunctionResponse carries a tool result back to the model
type FunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// Tool declares functions the model may call
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// FunctionDeclaration describes one callable function
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Schema is a subset of the OpenAPI schema accepted by the API
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GenerationConfig tunes the generation
type GenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

// GenerateRequest is the generateContent request body
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	Tools            []Tool            `json:"tools,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated answer option
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateResponse is the generateContent response body
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// NewClient creates a new Gemini API client
func NewClient(endpoint, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateContent issues one generateContent call and returns the parsed
// candidates. No retries are performed.
func (c *Client) GenerateContent(ctx context.Context, genReq *GenerateRequest) (*GenerateResponse, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	logrus.Debugf("Sending generateContent request to model %s (%d bytes)", c.model, len(body))

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	} else {
		logrus.Debugf("No API key provided")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	logrus.Debugf("generateContent response status: %d %s", resp.StatusCode, resp.Status)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		logrus.Errorf("generateContent failed with status %d: %s", resp.StatusCode, string(respBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	logrus.Debugf("generateContent returned %d candidates", len(genResp.Candidates))
	return &genResp, nil
}

// FirstCandidateText extracts the text of the first candidate, or an empty
// string when no candidate carries text.
func FirstCandidateText(resp *GenerateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// FunctionCalls returns the function calls requested by the first candidate.
func FunctionCalls(resp *GenerateResponse) []*FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	var calls []*FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}
