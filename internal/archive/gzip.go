package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Gzip compresses files into gzip members.
type Gzip struct {
	Level int
}

// NewGzip returns a compressor at the default level.
func NewGzip() *Gzip {
	return &Gzip{Level: gzip.DefaultCompression}
}

// Compress writes a gzip copy of src to dst, replacing dst if present.
func (g *Gzip) Compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	zw, err := gzip.NewWriterLevel(out, g.Level)
	if err != nil {
		out.Close()
		return err
	}
	zw.Name = filepath.Base(src)

	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("compress %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish gzip stream: %w", err)
	}
	return out.Close()
}

// Decompress writes the gunzipped content of src to w.
func Decompress(src string, w io.Writer) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("read gzip header: %w", err)
	}
	defer zr.Close()
	_, err = io.Copy(w, zr)
	return err
}
