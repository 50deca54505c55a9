// Package output persists merged records as delimited text.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/project-tktt/letterboxd-export/internal/domain"
)

// Header is the fixed first row of every export
var Header = []string{"Letterboxd URL", "TMDB ID", "Type", "Title"}

// outputMode is the mode of the exported file, temp files start as 0600
const outputMode os.FileMode = 0o644

// CSVWriter writes records to a file, replacing it atomically
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer for path
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Path() string {
	return w.path
}

// Write stores records in the given order. The file is written to a temporary
// sibling first so a failed export never truncates a previous one.
func (w *CSVWriter) Write(records []domain.ResolvedRecord) error {
	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(outputMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Encode writes the header row and one row per record to out
func Encode(out io.Writer, records []domain.ResolvedRecord) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Fields()); err != nil {
			return fmt.Errorf("write record %s: %w", r.SourceURL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
