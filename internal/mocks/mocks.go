package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/drive-summary-pipeline/internal/gemini"
	"github.com/drive-summary-pipeline/internal/sink"
	"github.com/drive-summary-pipeline/internal/source"
)

// MockGeminiClient is a mock implementation of the Gemini client
type MockGeminiClient struct {
	GenerateContentFunc func(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
	Calls               int
}

// GenerateContent mocks the GenerateContent method
func (m *MockGeminiClient) GenerateContent(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	m.Calls++
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, req)
	}
	return &gemini.GenerateResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Role: "model", Parts: []gemini.Part{{Text: "mock summary"}}}},
		},
	}, nil
}

// TextResponse builds a response carrying a single text candidate
func TextResponse(text string) *gemini.GenerateResponse {
	return &gemini.GenerateResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Role: "model", Parts: []gemini.Part{{Text: text}}}},
		},
	}
}

// CallResponse builds a response carrying function calls
func CallResponse(calls ...*gemini.FunctionCall) *gemini.GenerateResponse {
	parts := make([]gemini.Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, gemini.Part{FunctionCall: c})
	}
	return &gemini.GenerateResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Role: "model", Parts: parts}},
		},
	}
}

// MockSource is a mock implementation of the Source interface
type MockSource struct {
	NameFunc       func() string
	FetchFilesFunc func(ctx context.Context) ([]*source.File, error)
	lastSync       time.Time
}

// Name mocks the Name method
func (m *MockSource) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock-source"
}

// FetchFiles mocks the FetchFiles method
func (m *MockSource) FetchFiles(ctx context.Context) ([]*source.File, error) {
	if m.FetchFilesFunc != nil {
		return m.FetchFilesFunc(ctx)
	}
	return []*source.File{
		{
			Path:     "test.csv",
			Content:  []byte("a,b\n1,2\n"),
			Hash:     "test-hash",
			Modified: time.Now(),
			Size:     8,
			Source:   "mock-source",
		},
	}, nil
}

// GetLastSync mocks the GetLastSync method
func (m *MockSource) GetLastSync() time.Time {
	return m.lastSync
}

// SetLastSync mocks the SetLastSync method
func (m *MockSource) SetLastSync(t time.Time) {
	m.lastSync = t
}

// MockWriter is a mock sink that records appended rows
type MockWriter struct {
	AppendFunc func(rec sink.Record) error

	mu      sync.Mutex
	records []sink.Record
}

// Append mocks the Append method, recording the row
func (m *MockWriter) Append(rec sink.Record) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Close mocks the Close method
func (m *MockWriter) Close() error {
	return nil
}

// Records returns a copy of the appended rows
func (m *MockWriter) Records() []sink.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sink.Record, len(m.records))
	copy(out, m.records)
	return out
}

// MockSummarizer is a mock summarizer returning a fixed transformation
type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, text string) string
}

// Summarize mocks the Summarize method
func (m *MockSummarizer) Summarize(ctx context.Context, text string) string {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, text)
	}
	return "summary of: " + text
}
