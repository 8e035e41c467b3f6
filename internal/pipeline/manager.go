// Package pipeline drives the scan → decode → summarize → append cycle.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/drive-summary-pipeline/internal/config"
	"github.com/drive-summary-pipeline/internal/decode"
	"github.com/drive-summary-pipeline/internal/pool"
	"github.com/drive-summary-pipeline/internal/sink"
	"github.com/drive-summary-pipeline/internal/source"
	"github.com/drive-summary-pipeline/internal/summarizer"
	"github.com/drive-summary-pipeline/internal/utils"
	"github.com/sirupsen/logrus"
)

// Manager scans sources for new, changed and removed files and turns each
// change into summary rows on the sink. State is kept in a persisted index
// so restarts do not re-summarize unchanged files.
type Manager struct {
	summarizer summarizer.Summarizer
	writer     sink.Writer
	workers    *pool.Pool
	retryCfg   utils.RetryConfig
	indexPath  string

	// mu guards fileIndex and stats; summarization tasks update both
	// from pool goroutines.
	mu        sync.Mutex
	fileIndex map[string]*FileState
	stats     Stats
}

// FileState stores what the pipeline last emitted for a file. Summary keeps
// the row text so a later removal can retract exactly what was inserted.
type FileState struct {
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	Source       string    `json:"source"`
	Summary      string    `json:"summary"`
	Modified     time.Time `json:"modified"`
	SummarizedAt time.Time `json:"summarized_at"`
}

// Stats reports pipeline run counters
type Stats struct {
	Runs        int64     `json:"runs"`
	RowsEmitted int64     `json:"rows_emitted"`
	Failures    int64     `json:"failures"`
	LastRun     time.Time `json:"last_run"`
}

// NewManager creates a pipeline manager persisting its index under the
// storage path
func NewManager(sum summarizer.Summarizer, writer sink.Writer, workers *pool.Pool, storageConfig config.StorageConfig) (*Manager, error) {
	if err := os.MkdirAll(storageConfig.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	manager := &Manager{
		summarizer: sum,
		writer:     writer,
		workers:    workers,
		retryCfg:   utils.DefaultRetryConfig(),
		indexPath:  filepath.Join(storageConfig.Path, "summary_state.json"),
		fileIndex:  make(map[string]*FileState),
	}

	if err := manager.loadFileIndex(); err != nil {
		logrus.Warnf("Failed to load summary state index: %v", err)
	}

	return manager, nil
}

// ProcessOnce runs a single scan over all sources. New and changed files are
// decoded and summarized on the worker pool; files that disappeared since the
// previous scan get their last summary retracted.
func (m *Manager) ProcessOnce(ctx context.Context, sources []source.Source) error {
	logrus.Info("Starting pipeline run")

	// Track files currently present, and which sources actually answered.
	// A source whose fetch failed must not have its files retracted.
	currentFiles := make(map[string]bool)
	fetchedSources := make(map[string]bool)

	for _, src := range sources {
		logrus.Infof("Scanning source: %s", src.Name())

		var files []*source.File
		err := utils.RetryWithBackoff(ctx, m.retryCfg, func() error {
			var fetchErr error
			files, fetchErr = src.FetchFiles(ctx)
			return fetchErr
		})
		if err != nil {
			logrus.Errorf("Failed to fetch files from source %s: %v", src.Name(), err)
			m.addFailure()
			continue
		}
		fetchedSources[src.Name()] = true

		logrus.Debugf("Fetched %d files from source %s", len(files), src.Name())

		for _, file := range files {
			fileKey := fmt.Sprintf("%s:%s", src.Name(), file.Path)
			currentFiles[fileKey] = true

			if err := m.processFile(ctx, fileKey, src.Name(), file); err != nil {
				logrus.Errorf("Failed to process file %s: %v", file.Path, err)
				m.addFailure()
			}
		}

		src.SetLastSync(time.Now())
	}

	// All insertions land before removals are considered
	m.workers.Wait()

	m.retractMissing(currentFiles, fetchedSources)

	if err := m.saveFileIndex(); err != nil {
		logrus.Errorf("Failed to save summary state index: %v", err)
	}

	m.mu.Lock()
	m.stats.Runs++
	m.stats.LastRun = time.Now()
	m.mu.Unlock()

	logrus.Info("Pipeline run completed")
	return nil
}

// processFile decides what a file needs and schedules the summarization.
// A changed file first retracts the summary emitted for its previous content.
func (m *Manager) processFile(ctx context.Context, fileKey, sourceName string, file *source.File) error {
	m.mu.Lock()
	existing, exists := m.fileIndex[fileKey]
	m.mu.Unlock()

	if exists {
		if existing.Hash == file.Hash {
			logrus.Debugf("File %s unchanged, skipping", file.Path)
			return nil
		}
		logrus.Infof("File %s has changed, retracting previous summary", file.Path)
		if err := m.appendRow(sink.Record{
			Text: existing.Summary,
			Time: time.Now().UnixMilli(),
			Diff: sink.DiffDelete,
		}); err != nil {
			return fmt.Errorf("failed to retract previous summary: %w", err)
		}
	}

	text := decode.Decode(file.Content)

	// Copy what the task needs; file is not touched after submission
	hash := file.Hash
	path := file.Path
	modified := file.Modified

	err := m.workers.Submit(ctx, func(taskCtx context.Context) {
		summary := m.summarizer.Summarize(taskCtx, text)

		if err := m.appendRow(sink.Record{
			Text: summary,
			Time: time.Now().UnixMilli(),
			Diff: sink.DiffInsert,
		}); err != nil {
			logrus.Errorf("Failed to append summary for %s: %v", path, err)
			m.addFailure()
			return
		}

		m.mu.Lock()
		m.fileIndex[fileKey] = &FileState{
			Path:         path,
			Hash:         hash,
			Source:       sourceName,
			Summary:      summary,
			Modified:     modified,
			SummarizedAt: time.Now(),
		}
		m.mu.Unlock()

		logrus.Infof("Summarized file: %s", path)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule summarization: %w", err)
	}

	return nil
}

// retractMissing emits a retraction row for every indexed file that no
// longer exists in a source that answered this scan
func (m *Manager) retractMissing(currentFiles, fetchedSources map[string]bool) {
	m.mu.Lock()
	var missing []string
	for fileKey, state := range m.fileIndex {
		if currentFiles[fileKey] {
			continue
		}
		if !fetchedSources[state.Source] {
			continue
		}
		missing = append(missing, fileKey)
	}
	m.mu.Unlock()

	if len(missing) == 0 {
		logrus.Debugf("No removed files found")
		return
	}

	logrus.Infof("Found %d removed files to retract", len(missing))

	for _, fileKey := range missing {
		m.mu.Lock()
		state := m.fileIndex[fileKey]
		m.mu.Unlock()

		if err := m.appendRow(sink.Record{
			Text: state.Summary,
			Time: time.Now().UnixMilli(),
			Diff: sink.DiffDelete,
		}); err != nil {
			logrus.Errorf("Failed to retract summary for %s: %v", state.Path, err)
			m.addFailure()
			continue
		}

		m.mu.Lock()
		delete(m.fileIndex, fileKey)
		m.mu.Unlock()

		logrus.Infof("Retracted summary for removed file: %s", state.Path)
	}
}

// Stats returns a snapshot of the run counters
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) appendRow(rec sink.Record) error {
	if err := m.writer.Append(rec); err != nil {
		return err
	}
	m.mu.Lock()
	m.stats.RowsEmitted++
	m.mu.Unlock()
	return nil
}

func (m *Manager) addFailure() {
	m.mu.Lock()
	m.stats.Failures++
	m.mu.Unlock()
}

// loadFileIndex loads the summary state index from disk
func (m *Manager) loadFileIndex() error {
	if _, err := os.Stat(m.indexPath); os.IsNotExist(err) {
		return nil // Index doesn't exist yet
	}

	data, err := os.ReadFile(m.indexPath)
	if err != nil {
		return fmt.Errorf("failed to read state index: %w", err)
	}

	if err := json.Unmarshal(data, &m.fileIndex); err != nil {
		return fmt.Errorf("failed to unmarshal state index: %w", err)
	}

	return nil
}

// saveFileIndex saves the summary state index to disk
func (m *Manager) saveFileIndex() error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m.fileIndex, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state index: %w", err)
	}

	if err := os.WriteFile(m.indexPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state index: %w", err)
	}

	logrus.Debugf("Saved summary state index to: %s", m.indexPath)
	return nil
}
