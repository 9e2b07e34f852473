package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"prodexport/internal/domain"
	"prodexport/internal/etl"
	"prodexport/internal/logging"
	"prodexport/internal/metrics"
	"prodexport/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Export Service: one export run end to end
// ─────────────────────────────────────────────────────────────

// ErrExportRunning is returned when an export to the same target is in progress.
var ErrExportRunning = errors.New("an export to this target is already running")

// SourceOpener opens a fresh RecordSource positioned at offset.
type SourceOpener func(ctx context.Context, offset int64) (etl.RecordSource, error)

// Dependencies are the collaborators an ExportService runs with.
// History, Metrics and Emitter are optional.
type Dependencies struct {
	SourceType  string
	OpenSource  SourceOpener
	References  domain.ReferenceStore
	ObjectStore etl.ObjectStore
	Archiver    etl.Archiver
	Pipeline    etl.PipelineConfig

	History     *storage.RunStore
	Metrics     *metrics.ExportMetrics
	MetricsPath string
	Emitter     EventEmitter
}

// RunInput parameterises one export.
type RunInput struct {
	Offset   int64 `json:"offset"`
	TestMode bool  `json:"testMode"`
}

// ExportService runs exports and records their outcome.
type ExportService struct {
	deps    Dependencies
	running runningGuard
	now     func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(deps Dependencies) *ExportService {
	if deps.Emitter == nil {
		deps.Emitter = LogEmitter{}
	}
	return &ExportService{deps: deps, now: time.Now}
}

// Run executes one export synchronously. Local artifacts are gone when Run
// returns unless in.TestMode is set.
func (s *ExportService) Run(ctx context.Context, in RunInput) (*etl.Result, error) {
	key := s.targetKey()
	if !s.running.TryLock(key) {
		return nil, ErrExportRunning
	}
	defer s.running.Unlock(key)

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.WithFields(ctx, "source", s.deps.SourceType, "offset", in.Offset, "test_mode", in.TestMode)

	started := s.now()
	s.deps.Emitter.Emit(ctx, EventExportStarted, in)
	log.Info("export started")

	var (
		res   *etl.Result
		stats etl.CacheStats
	)
	runErr := func() error {
		src, err := s.deps.OpenSource(ctx, in.Offset)
		if err != nil {
			return errors.Wrapf(err, "open %s record source", s.deps.SourceType)
		}

		cache := etl.NewNameCache(s.deps.References)
		cfg := s.deps.Pipeline
		cfg.TestMode = in.TestMode
		p := etl.NewPipeline(cfg, src, etl.NewTransformer(cache),
			etl.WithArchiver(s.deps.Archiver),
			etl.WithObjectStore(s.deps.ObjectStore),
			etl.WithLogger(log),
			etl.WithClock(s.now),
		)

		res, err = p.Run(ctx)
		stats = cache.Stats()
		return err
	}()

	finished := s.now()
	s.record(ctx, in, started, finished, res, stats, runErr)

	if runErr != nil {
		log.Error("export failed", "error", runErr)
		s.deps.Emitter.Emit(ctx, EventExportFailed, runErr.Error())
		return res, runErr
	}
	log.Info("export finished", "file", res.FilePath, "rows", res.RowsWritten, "duration", res.Duration)
	s.deps.Emitter.Emit(ctx, EventExportFinished, res)
	return res, nil
}

// record writes the run to history and metrics. Failures there never fail
// the export itself.
func (s *ExportService) record(ctx context.Context, in RunInput, started, finished time.Time, res *etl.Result, stats etl.CacheStats, runErr error) {
	log := logging.FromContext(ctx)
	status := etl.RunStatusSuccess
	if runErr != nil {
		status = etl.RunStatusError
	}

	if s.deps.History != nil {
		entry := &etl.RunLog{
			StartedAt:  started,
			FinishedAt: finished,
			Status:     status,
			SourceType: s.deps.SourceType,
			Offset:     in.Offset,
			TestMode:   in.TestMode,
		}
		if res != nil {
			entry.FilePath = res.FilePath
			entry.RecordsRead = res.RecordsRead
			entry.RecordsSkipped = res.RecordsSkipped
			entry.RowsWritten = res.RowsWritten
			entry.Staged = res.Staged
		}
		if runErr != nil {
			entry.Error = runErr.Error()
		}
		if err := s.deps.History.CreateRunLog(entry); err != nil {
			log.Warn("record run history", "error", err)
		}
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordRun(status, res, stats, finished)
		if s.deps.MetricsPath != "" {
			if err := s.deps.Metrics.WriteTextfile(s.deps.MetricsPath); err != nil {
				log.Warn("write metrics textfile", "path", s.deps.MetricsPath, "error", err)
			}
		}
	}
}

// History returns the most recent runs, newest first.
func (s *ExportService) History(limit int) ([]etl.RunLog, error) {
	if s.deps.History == nil {
		return nil, errors.New("run history is disabled")
	}
	return s.deps.History.ListRunLogs(limit)
}

// Running reports whether an export is in progress.
func (s *ExportService) Running() bool {
	return s.running.Running(s.targetKey())
}

// WaitRunning blocks until in-flight exports finish or ctx is done.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

func (s *ExportService) targetKey() string {
	cfg := s.deps.Pipeline
	return filepath.Join(cfg.Container, cfg.ObjectName)
}
