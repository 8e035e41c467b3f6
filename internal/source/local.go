// Drive CSV Summary Pipeline
// Copyright (C) 2025  Drive CSV Summary Pipeline Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drive-summary-pipeline/internal/config"
)

// LocalFolderSource implements the Source interface for local folders.
// It exists mainly for running the pipeline without Drive credentials.
type LocalFolderSource struct {
	config   config.LocalFolderConfig
	lastSync time.Time
	folders  []string
}

// NewLocalFolderSource creates a new local folder source
func NewLocalFolderSource(cfg config.LocalFolderConfig) (*LocalFolderSource, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("local folder source is disabled")
	}

	folders := []string{}
	for _, path := range cfg.Paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("folder does not exist: %s", path)
		}
		folders = append(folders, path)
	}

	if len(folders) == 0 {
		return nil, fmt.Errorf("at least one local folder must be configured")
	}

	return &LocalFolderSource{
		config:   cfg,
		folders:  folders,
		lastSync: time.Now().Add(-24 * time.Hour), // Default to 24 hours ago
	}, nil
}

// Name returns the source name
func (l *LocalFolderSource) Name() string {
	return "local"
}

// FetchFiles retrieves data files from the configured folders
func (l *LocalFolderSource) FetchFiles(ctx context.Context) ([]*File, error) {
	var files []*File

	for _, folder := range l.folders {
		logrus.Debugf("Fetching files from local folder: %s", folder)
		folderFiles, err := l.fetchFolderFiles(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch files from folder %s: %w", folder, err)
		}
		logrus.Debugf("Found %d files in folder %s", len(folderFiles), folder)
		files = append(files, folderFiles...)
	}

	return files, nil
}

// fetchFolderFiles walks a folder recursively collecting data files
func (l *LocalFolderSource) fetchFolderFiles(ctx context.Context, folderPath string) ([]*File, error) {
	var files []*File

	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Warnf("Error accessing path %s: %v", path, err)
			return nil // Continue walking
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			return nil
		}

		baseName := filepath.Base(path)
		if strings.HasPrefix(baseName, ".") || !isDataFile(baseName) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logrus.Warnf("Failed to read file %s: %v", path, err)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logrus.Warnf("Failed to get file info for %s: %v", path, err)
			return nil
		}

		relPath, err := filepath.Rel(folderPath, path)
		if err != nil {
			logrus.Warnf("Failed to calculate relative path for %s: %v", path, err)
			return nil
		}

		files = append(files, &File{
			Path:     relPath,
			Content:  content,
			Hash:     fmt.Sprintf("%x", sha256.Sum256(content)),
			Modified: info.ModTime(),
			Size:     info.Size(),
			Source:   "local",
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", folderPath, err)
	}

	return files, nil
}

// isDataFile checks if a filename looks like summarizable data
func isDataFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".tsv", ".txt", ".md":
		return true
	}
	return false
}

// GetLastSync returns the last scan timestamp
func (l *LocalFolderSource) GetLastSync() time.Time {
	return l.lastSync
}

// SetLastSync updates the last scan timestamp
func (l *LocalFolderSource) SetLastSync(t time.Time) {
	l.lastSync = t
}
