// Package sink appends summary records to the CSV output file.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Change indicators, matching incremental-recomputation semantics:
// +1 inserts a row, -1 retracts a previously emitted row.
const (
	DiffInsert = 1
	DiffDelete = -1
)

// Record is one output row
type Record struct {
	// Text is the summary text (or a substitute string)
	Text string
	// Time is the emission timestamp in Unix milliseconds
	Time int64
	// Diff is DiffInsert or DiffDelete
	Diff int
}

// Writer appends summary records to a destination
type Writer interface {
	Append(rec Record) error
	Close() error
}

// CSVWriter appends records to a CSV file. Rows are written whole under a
// mutex, so concurrent appends never interleave within a row.
type CSVWriter struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVWriter opens (or creates) the output file in append mode. The
// header row is written only when the file is new or empty.
func NewCSVWriter(path, textColumn string) (*CSVWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat output file: %w", err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write([]string{textColumn, "time", "diff"}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to flush header: %w", err)
		}
	}

	return &CSVWriter{f: f, w: w}, nil
}

// Append writes one record and flushes it to the file
func (c *CSVWriter) Append(rec Record) error {
	if rec.Diff != DiffInsert && rec.Diff != DiffDelete {
		return fmt.Errorf("invalid diff value: %d", rec.Diff)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{
		rec.Text,
		strconv.FormatInt(rec.Time, 10),
		strconv.Itoa(rec.Diff),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	return nil
}

// Close flushes and closes the output file
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return c.f.Close()
}
