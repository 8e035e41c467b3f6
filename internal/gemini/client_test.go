package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testRequest(text string) *GenerateRequest {
	return &GenerateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: text}}},
		},
		GenerationConfig: &GenerationConfig{Temperature: 0.7},
	}
}

func TestClient_GenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("Expected API key header 'test-key', got '%s'", got)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "summarize this" {
			t.Errorf("Unexpected request contents: %+v", req.Contents)
		}

		resp := GenerateResponse{
			Candidates: []Candidate{
				{Content: Content{Role: "model", Parts: []Part{{Text: "a summary"}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.5-flash", "test-key", 10*time.Second)

	resp, err := client.GenerateContent(context.Background(), testRequest("summarize this"))
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if got := FirstCandidateText(resp); got != "a summary" {
		t.Errorf("Expected 'a summary', got '%s'", got)
	}
}

func TestClient_GenerateContent_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401, "message": "API key not valid"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.5-flash", "bad-key", 10*time.Second)

	_, err := client.GenerateContent(context.Background(), testRequest("text"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_GenerateContent_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-2.5-flash", "test-key", 10*time.Second)

	_, err := client.GenerateContent(context.Background(), testRequest("text"))
	if err == nil {
		t.Fatal("Expected error for server failure, got none")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", statusErr.StatusCode)
	}
}

func TestClient_GenerateContent_NetworkError(t *testing.T) {
	// Point at a closed server to force a transport error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "gemini-2.5-flash", "test-key", time.Second)

	_, err := client.GenerateContent(context.Background(), testRequest("text"))
	if err == nil {
		t.Fatal("Expected network error, got none")
	}
}

func TestFirstCandidateText(t *testing.T) {
	if got := FirstCandidateText(nil); got != "" {
		t.Errorf("Expected empty string for nil response, got '%s'", got)
	}

	if got := FirstCandidateText(&GenerateResponse{}); got != "" {
		t.Errorf("Expected empty string for no candidates, got '%s'", got)
	}

	resp := &GenerateResponse{
		Candidates: []Candidate{
			{Content: Content{Parts: []Part{
				{FunctionCall: &FunctionCall{Name: "analyze_csv"}},
				{Text: "after the call"},
			}}},
		},
	}
	if got := FirstCandidateText(resp); got != "after the call" {
		t.Errorf("Expected 'after the call', got '%s'", got)
	}
}

func TestFunctionCalls(t *testing.T) {
	resp := &GenerateResponse{
		Candidates: []Candidate{
			{Content: Content{Parts: []Part{
				{FunctionCall: &FunctionCall{Name: "analyze_csv", Args: map[string]interface{}{"query": "summary"}}},
				{FunctionCall: &FunctionCall{Name: "filter_rows"}},
			}}},
		},
	}

	calls := FunctionCalls(resp)
	if len(calls) != 2 {
		t.Fatalf("Expected 2 function calls, got %d", len(calls))
	}
	if calls[0].Name != "analyze_csv" {
		t.Errorf("Expected first call 'analyze_csv', got '%s'", calls[0].Name)
	}
	if calls[0].Args["query"] != "summary" {
		t.Errorf("Unexpected args: %v", calls[0].Args)
	}

	if calls := FunctionCalls(&GenerateResponse{}); calls != nil {
		t.Errorf("Expected nil for empty response, got %v", calls)
	}
}
