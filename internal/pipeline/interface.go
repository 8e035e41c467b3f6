package pipeline

import (
	"context"

	"github.com/drive-summary-pipeline/internal/source"
)

// ManagerInterface defines the pipeline manager operations
type ManagerInterface interface {
	ProcessOnce(ctx context.Context, sources []source.Source) error
	Stats() Stats
}
