package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v56/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/drive-summary-pipeline/internal/config"
)

// GitHubSource implements the Source interface for GitHub repositories
type GitHubSource struct {
	client       *github.Client
	config       config.GitHubConfig
	lastSync     time.Time
	repositories []string
}

// NewGitHubSource creates a new GitHub source
func NewGitHubSource(cfg config.GitHubConfig) (*GitHubSource, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("github source is disabled")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if len(cfg.Repositories) == 0 {
		return nil, fmt.Errorf("at least one repository must be configured")
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &GitHubSource{
		client:       github.NewClient(tc),
		config:       cfg,
		repositories: cfg.Repositories,
		lastSync:     time.Now().Add(-24 * time.Hour), // Default to 24 hours ago
	}, nil
}

// Name returns the source name
func (g *GitHubSource) Name() string {
	return "github"
}

// FetchFiles retrieves data files from the configured repositories
func (g *GitHubSource) FetchFiles(ctx context.Context) ([]*File, error) {
	var files []*File

	for _, repo := range g.repositories {
		logrus.Debugf("Fetching files from repository: %s", repo)
		repoFiles, err := g.fetchRepositoryFiles(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch files from repository %s: %w", repo, err)
		}
		logrus.Debugf("Found %d files in repository %s", len(repoFiles), repo)
		files = append(files, repoFiles...)
	}

	return files, nil
}

// fetchRepositoryFiles fetches data files from a specific repository
func (g *GitHubSource) fetchRepositoryFiles(ctx context.Context, repo string) ([]*File, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid repository format, expected 'owner/repo'")
	}

	owner, repoName := parts[0], parts[1]

	_, contents, _, err := g.client.Repositories.GetContents(ctx, owner, repoName, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository contents: %w", err)
	}

	var files []*File
	for _, content := range contents {
		fileList, err := g.processContent(ctx, owner, repoName, content, "")
		if err != nil {
			logrus.Warnf("Skipping %s: %v", content.GetPath(), err)
			continue
		}
		files = append(files, fileList...)
	}

	return files, nil
}

// processContent processes a GitHub content item recursively
func (g *GitHubSource) processContent(ctx context.Context, owner, repo string, content *github.RepositoryContent, path string) ([]*File, error) {
	if content == nil {
		return nil, nil
	}

	currentPath := filepath.Join(path, content.GetName())

	if content.GetType() == "file" {
		if !isDataFile(content.GetName()) {
			return nil, nil
		}

		fileContent, err := g.getFileContent(ctx, owner, repo, content)
		if err != nil {
			return nil, fmt.Errorf("failed to get file content: %w", err)
		}

		return []*File{{
			Path:     currentPath,
			Content:  fileContent,
			Hash:     fmt.Sprintf("%x", sha256.Sum256(fileContent)),
			Modified: time.Now(), // GitHub API doesn't provide modification time for content
			Size:     int64(len(fileContent)),
			Source:   "github",
		}}, nil
	}

	if content.GetType() == "dir" {
		_, contents, _, err := g.client.Repositories.GetContents(ctx, owner, repo, content.GetPath(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get directory contents: %w", err)
		}

		var allFiles []*File
		for _, subContent := range contents {
			files, err := g.processContent(ctx, owner, repo, subContent, currentPath)
			if err != nil {
				continue
			}
			allFiles = append(allFiles, files...)
		}

		return allFiles, nil
	}

	return nil, nil
}

// getFileContent retrieves the actual content of a file
func (g *GitHubSource) getFileContent(ctx context.Context, owner, repo string, content *github.RepositoryContent) ([]byte, error) {
	fileContent, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	if fileContent != "" {
		// Content is already available (for small files)
		return []byte(fileContent), nil
	}

	// For larger files, we need to download them
	url := content.GetDownloadURL()
	if url == "" {
		return nil, fmt.Errorf("no download URL available for file")
	}

	resp, err := g.client.Client().Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetLastSync returns the last scan timestamp
func (g *GitHubSource) GetLastSync() time.Time {
	return g.lastSync
}

// SetLastSync updates the last scan timestamp
func (g *GitHubSource) SetLastSync(t time.Time) {
	g.lastSync = t
}
