package etl

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ── Destination ────────────────────────────────────────────
// FileSink writes rows to the local export file. One sink per run.

// TimestampLayout is the file-name timestamp format (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// ExportFileName builds "<prefix><timestamp>.<ext>".
func ExportFileName(prefix, ext string, at time.Time) string {
	return prefix + at.Format(TimestampLayout) + "." + ext
}

// FileSink is a buffered row writer over a freshly created file.
type FileSink struct {
	f    *os.File
	w    *bufio.Writer
	rows int
}

// CreateFileSink creates (or truncates) the file at path for writing.
func CreateFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create export file in directory %s: %w", filepath.Dir(path), err)
	}
	return &FileSink{f: f, w: bufio.NewWriterSize(f, 64*1024)}, nil
}

// Rows returns the number of rows written so far, header included.
func (s *FileSink) Rows() int { return s.rows }

// WriteRow appends one delimited line.
func (s *FileSink) WriteRow(r Row) error {
	if _, err := s.w.WriteString(r.Line()); err != nil {
		return fmt.Errorf("write row %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Close flushes buffered rows and closes the file. Safe to call twice.
func (s *FileSink) Close() error {
	if s.f == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	s.f = nil
	if flushErr != nil {
		return fmt.Errorf("flush export file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close export file: %w", closeErr)
	}
	return nil
}
