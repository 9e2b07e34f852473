package sources

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"prodexport/internal/etl"
)

// ── NDJSON File Source ─────────────────────────────────────
// Reads one raw product document per line from a local file.

type ndjsonProvider struct{}

func init() { etl.RegisterSource(&ndjsonProvider{}) }

func (p *ndjsonProvider) Type() string { return "ndjson" }

// Open expects cfg["filePath"]. The offset is the number of lines to skip.
func (p *ndjsonProvider) Open(ctx context.Context, cfg etl.SourceConfig, offset int64) (etl.RecordSource, error) {
	filePath := cfg.String("filePath", "")
	if filePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	src := NewNDJSONSource(f)
	for i := int64(0); i < offset; i++ {
		if _, err := src.readLine(); err != nil {
			if err == io.EOF {
				break
			}
			f.Close()
			return nil, fmt.Errorf("skip to line %d: %w", offset, err)
		}
	}
	return src, nil
}

// NDJSONSource yields each non-empty line of r as a record.
type NDJSONSource struct {
	r      *bufio.Reader
	closer io.Closer
}

// NewNDJSONSource reads from r; r is closed by Close when it is an io.Closer.
func NewNDJSONSource(r io.Reader) *NDJSONSource {
	s := &NDJSONSource{r: bufio.NewReaderSize(r, 256*1024)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *NDJSONSource) Next(ctx context.Context) (etl.RawRecord, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) > 0 {
			return etl.RawRecord(line), nil
		}
	}
}

// readLine returns the next line without its terminator, io.EOF at the end.
func (s *NDJSONSource) readLine() ([]byte, error) {
	line, err := s.r.ReadBytes('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(line), nil
}

func (s *NDJSONSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
