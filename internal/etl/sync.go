package etl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ── Pipeline ───────────────────────────────────────────────
// Orchestrates: source.Next → transformer → file sink → archive → stage.
//
// Every Pipeline removes its local artifacts exactly once when it is done,
// whichever way Run exits, unless it runs in test mode.

// Defaults mirrored by the config package.
const (
	DefaultFilePrefix        = "prodId_export_"
	DefaultExtension         = "txt"
	DefaultContainer         = "repository"
	DefaultObjectName        = "prodid_d.txt"
	DefaultArchiveObjectName = "prodid_d.txt.gz"
	ArchiveSuffix            = ".gz"
)

// ErrAlreadyRun is returned when Run is called on a used Pipeline.
var ErrAlreadyRun = errors.New("pipeline already run")

// State is a Pipeline lifecycle stage.
type State string

const (
	StateCreated   State = "created"
	StateFileOpen  State = "file_open"
	StateWriting   State = "writing"
	StateFinalized State = "finalized"
	StateFailed    State = "failed"
)

// Archiver compresses src into dst.
type Archiver interface {
	Compress(src, dst string) error
}

// ObjectStore stages local files into named containers of a remote store.
type ObjectStore interface {
	ContainerExists(ctx context.Context, container string) (bool, error)
	CreateContainer(ctx context.Context, container string) error
	Put(ctx context.Context, container, localPath, objectName string) error
}

// PipelineConfig holds the settings for a single export run.
type PipelineConfig struct {
	BaseDir           string
	FilePrefix        string
	Extension         string
	Container         string
	ObjectName        string
	ArchiveObjectName string

	// TestMode skips compression and staging and keeps local files.
	TestMode bool
}

func (c *PipelineConfig) applyDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = os.TempDir()
	}
	if c.FilePrefix == "" {
		c.FilePrefix = DefaultFilePrefix
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.Container == "" {
		c.Container = DefaultContainer
	}
	if c.ObjectName == "" {
		c.ObjectName = DefaultObjectName
	}
	if c.ArchiveObjectName == "" {
		c.ArchiveObjectName = DefaultArchiveObjectName
	}
}

// Result is the outcome of a pipeline run.
type Result struct {
	FilePath       string        `json:"filePath"`
	ArchivePath    string        `json:"archivePath,omitempty"`
	RecordsRead    int           `json:"recordsRead"`
	RecordsSkipped int           `json:"recordsSkipped"`
	RowsWritten    int           `json:"rowsWritten"`
	Staged         bool          `json:"staged"`
	Duration       time.Duration `json:"duration"`
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithArchiver sets the compressor used before staging.
func WithArchiver(a Archiver) Option { return func(p *Pipeline) { p.archiver = a } }

// WithObjectStore sets the remote store artifacts are staged into.
func WithObjectStore(s ObjectStore) Option { return func(p *Pipeline) { p.store = s } }

// WithLogger sets the logger of the pipeline and of its transformer.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithClock overrides time.Now, for file naming and durations.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// Pipeline exports one pass of a RecordSource to a delimited file.
type Pipeline struct {
	cfg         PipelineConfig
	source      RecordSource
	transformer *Transformer
	archiver    Archiver
	store       ObjectStore
	logger      *slog.Logger
	now         func() time.Time

	state       State
	filePath    string
	archivePath string
	cleanupOnce sync.Once
}

// NewPipeline creates a pipeline in the Created state.
func NewPipeline(cfg PipelineConfig, src RecordSource, tr *Transformer, opts ...Option) *Pipeline {
	cfg.applyDefaults()
	p := &Pipeline{
		cfg:         cfg,
		source:      src,
		transformer: tr,
		logger:      slog.Default(),
		now:         time.Now,
		state:       StateCreated,
	}
	for _, o := range opts {
		o(p)
	}
	if tr != nil {
		tr.SetLogger(p.logger)
	}
	return p
}

// State returns the current lifecycle stage.
func (p *Pipeline) State() State { return p.state }

// Run executes the export end-to-end. Local artifacts are cleaned up before
// Run returns, on success and on error alike.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	if p.state != StateCreated {
		return nil, ErrAlreadyRun
	}
	defer p.Close()
	defer func() {
		if err != nil {
			p.state = StateFailed
		}
	}()

	start := p.now()
	res = &Result{}

	// 1. Allocate and open the sink.
	p.filePath = filepath.Join(p.cfg.BaseDir, ExportFileName(p.cfg.FilePrefix, p.cfg.Extension, start))
	sink, err := CreateFileSink(p.filePath)
	if err != nil {
		return res, errors.Wrap(err, "failed to create product id export file")
	}
	defer sink.Close()
	p.state = StateFileOpen
	res.FilePath = p.filePath

	// 2. Header, then every row of every record in source order.
	if err := sink.WriteRow(Columns); err != nil {
		return res, errors.Wrap(err, "write header")
	}
	p.state = StateWriting
	if err := p.writeRecords(ctx, sink, res); err != nil {
		return res, err
	}
	if err := sink.Close(); err != nil {
		return res, errors.Wrap(err, "close export file")
	}

	// 3. Compress and stage.
	if !p.cfg.TestMode {
		if err := p.stage(ctx); err != nil {
			return res, err
		}
		res.ArchivePath = p.archivePath
		res.Staged = true
	}

	p.state = StateFinalized
	res.Duration = p.now().Sub(start)
	p.logger.Info("export file generated",
		"path", p.filePath,
		"records", res.RecordsRead,
		"skipped", res.RecordsSkipped,
		"rows", res.RowsWritten,
		"test_mode", p.cfg.TestMode,
	)
	return res, nil
}

func (p *Pipeline) writeRecords(ctx context.Context, sink *FileSink, res *Result) error {
	for {
		raw, err := p.source.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read record %d", res.RecordsRead+1)
		}
		res.RecordsRead++

		rows := p.transformer.Transform(ctx, raw)
		if len(rows) == 0 {
			res.RecordsSkipped++
			continue
		}
		for _, row := range rows {
			if err := sink.WriteRow(row); err != nil {
				return errors.WithStack(err)
			}
			res.RowsWritten++
		}
	}
}

func (p *Pipeline) stage(ctx context.Context) error {
	if p.store == nil {
		return errors.New("no object store configured")
	}
	if p.archiver == nil {
		return errors.New("no archiver configured")
	}
	container := p.cfg.Container

	exists, err := p.store.ContainerExists(ctx, container)
	if err != nil {
		return errors.Wrapf(err, "check container %s", container)
	}
	if !exists {
		if err := p.store.CreateContainer(ctx, container); err != nil {
			return errors.Wrapf(err, "create container %s", container)
		}
	}

	archivePath := p.filePath + ArchiveSuffix
	// Recorded before compressing so a partial archive is still removed.
	p.archivePath = archivePath
	if err := p.archiver.Compress(p.filePath, archivePath); err != nil {
		return errors.Wrap(err, "compress export file")
	}

	if err := p.store.Put(ctx, container, p.filePath, p.cfg.ObjectName); err != nil {
		return errors.Wrap(err, "failed to store export file to object storage")
	}
	if err := p.store.Put(ctx, container, archivePath, p.cfg.ArchiveObjectName); err != nil {
		return errors.Wrap(err, "failed to store export gz file to object storage")
	}
	return nil
}

// Close removes local artifacts unless in test mode. It runs at most once
// per Pipeline; Run calls it on every exit path.
func (p *Pipeline) Close() error {
	var firstErr error
	p.cleanupOnce.Do(func() {
		if err := p.source.Close(); err != nil {
			p.logger.Warn("close record source", "error", err)
		}
		if p.cfg.TestMode {
			return
		}
		for _, path := range []string{p.filePath, p.archivePath} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				p.logger.Warn("remove export artifact", "path", path, "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	})
	return firstErr
}
