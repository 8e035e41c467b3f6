package gemini

import "context"

// ClientInterface defines the Gemini client operations used by the pipeline
type ClientInterface interface {
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
