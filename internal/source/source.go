package source

import (
	"context"
	"time"
)

// File represents a file observed in an external source
type File struct {
	Path     string    `json:"path"`
	Content  []byte    `json:"content"`
	Hash     string    `json:"hash"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
	Source   string    `json:"source"`
}

// Source defines the interface for file sources watched by the pipeline
type Source interface {
	// Name returns the source name
	Name() string

	// FetchFiles retrieves the current set of files from the source
	FetchFiles(ctx context.Context) ([]*File, error)

	// GetLastSync returns the last scan timestamp
	GetLastSync() time.Time

	// SetLastSync updates the last scan timestamp
	SetLastSync(t time.Time)
}
