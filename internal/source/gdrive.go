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
	"io"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/drive-summary-pipeline/internal/config"
)

// Google Workspace MIME types that need exporting.
const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
	exportMimeHTML = "text/html"
)

// maxDownloadSize is the maximum size for downloaded content (5MB).
const maxDownloadSize = 5 * 1024 * 1024

// DriveSource implements the Source interface for a Google Drive folder
type DriveSource struct {
	svc      *drive.Service
	config   config.DriveConfig
	lastSync time.Time
}

// NewDriveSource creates a new Google Drive source
func NewDriveSource(ctx context.Context, cfg config.DriveConfig) (*DriveSource, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("drive source is disabled")
	}
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder ID is required")
	}

	opts := []option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}

	return &DriveSource{
		svc:      svc,
		config:   cfg,
		lastSync: time.Now().Add(-24 * time.Hour), // Default to 24 hours ago
	}, nil
}

// Name returns the source name
func (s *DriveSource) Name() string {
	return "gdrive"
}

// FetchFiles retrieves the current contents of the watched folder
func (s *DriveSource) FetchFiles(ctx context.Context) ([]*File, error) {
	var files []*File

	query := fmt.Sprintf("'%s' in parents and trashed = false", s.config.FolderID)
	pageToken := ""

	for {
		call := s.svc.Files.List().
			Q(query).
			PageSize(s.config.PageSize).
			Fields("nextPageToken, files(id, name, mimeType, size, modifiedTime, md5Checksum)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive folder %s: %w", s.config.FolderID, err)
		}

		for _, f := range list.Files {
			if !s.shouldProcess(f) {
				logrus.Debugf("Skipping drive file %s (%s)", f.Name, f.MimeType)
				continue
			}

			content, err := s.fetchFileContent(ctx, f)
			if err != nil {
				logrus.Warnf("Failed to fetch content of drive file %s: %v", f.Name, err)
				continue
			}

			// Google Workspace exports carry no md5Checksum; hash the
			// exported content instead.
			hash := f.Md5Checksum
			if hash == "" {
				hash = fmt.Sprintf("%x", sha256.Sum256(content))
			}

			modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
			if err != nil {
				modified = time.Now()
			}

			files = append(files, &File{
				Path:     f.Name,
				Content:  content,
				Hash:     hash,
				Modified: modified,
				Size:     int64(len(content)),
				Source:   s.Name(),
			})
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	logrus.Debugf("Fetched %d files from drive folder %s", len(files), s.config.FolderID)
	return files, nil
}

// shouldProcess checks whether a drive file is worth downloading
func (s *DriveSource) shouldProcess(f *drive.File) bool {
	switch f.MimeType {
	case mimeTypeFolder:
		return false
	case mimeTypeGoogleSheet:
		return true
	case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
		return s.config.ExportDocs
	}
	return isTextMime(f.MimeType) && f.Size <= maxDownloadSize
}

// fetchFileContent downloads or exports a drive file as text bytes
func (s *DriveSource) fetchFileContent(ctx context.Context, f *drive.File) ([]byte, error) {
	switch f.MimeType {
	case mimeTypeGoogleSheet:
		return s.exportFile(ctx, f.Id, exportMimeCSV)
	case mimeTypeGoogleSlides:
		return s.exportFile(ctx, f.Id, exportMimeText)
	case mimeTypeGoogleDoc:
		html, err := s.exportFile(ctx, f.Id, exportMimeHTML)
		if err != nil {
			return nil, err
		}
		md, err := htmltomarkdown.ConvertString(string(html))
		if err != nil {
			return nil, fmt.Errorf("failed to convert doc export to markdown: %w", err)
		}
		return []byte(md), nil
	}

	resp, err := s.svc.Files.Get(f.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	return data, nil
}

// exportFile exports a Google Workspace file to the given format
func (s *DriveSource) exportFile(ctx context.Context, fileID, exportMime string) ([]byte, error) {
	resp, err := s.svc.Files.Export(fileID, exportMime).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	return data, nil
}

// isTextMime checks if a MIME type is likely text content
func isTextMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}

	textTypes := []string{
		"application/json",
		"application/xml",
		"application/csv",
		"application/x-yaml",
	}

	for _, t := range textTypes {
		if mimeType == t {
			return true
		}
	}

	return false
}

// GetLastSync returns the last scan timestamp
func (s *DriveSource) GetLastSync() time.Time {
	return s.lastSync
}

// SetLastSync updates the last scan timestamp
func (s *DriveSource) SetLastSync(t time.Time) {
	s.lastSync = t
}
