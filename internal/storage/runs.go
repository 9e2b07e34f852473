package storage

import (
	"time"

	"github.com/google/uuid"

	"prodexport/internal/etl"
)

// RunStore persists export run logs.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRunLog inserts log, assigning it a fresh id.
func (s *RunStore) CreateRunLog(log *etl.RunLog) error {
	log.ID = uuid.New().String()
	if log.FinishedAt.IsZero() {
		log.FinishedAt = time.Now()
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO export_runs (id, started_at, finished_at, status, source_type, start_offset,
		 test_mode, file_path, records_read, records_skipped, rows_written, staged, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.StartedAt, log.FinishedAt, log.Status, log.SourceType, log.Offset,
		log.TestMode, log.FilePath, log.RecordsRead, log.RecordsSkipped, log.RowsWritten,
		log.Staged, log.Error,
	)
	return err
}

// ListRunLogs returns the most recent runs, newest first.
func (s *RunStore) ListRunLogs(limit int) ([]etl.RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.conn.Query(
		`SELECT id, started_at, finished_at, status, source_type, start_offset, test_mode,
		 file_path, records_read, records_skipped, rows_written, staged, error
		 FROM export_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []etl.RunLog
	for rows.Next() {
		var l etl.RunLog
		if err := rows.Scan(
			&l.ID, &l.StartedAt, &l.FinishedAt, &l.Status, &l.SourceType, &l.Offset, &l.TestMode,
			&l.FilePath, &l.RecordsRead, &l.RecordsSkipped, &l.RowsWritten, &l.Staged, &l.Error,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
