package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodexport/internal/domain"
	"prodexport/internal/etl"
)

func TestExportMetrics_RecordRun(t *testing.T) {
	m := New(nil)
	finished := time.Unix(1700000000, 0)

	m.RecordRun(etl.RunStatusSuccess, &etl.Result{
		RecordsRead:    10,
		RecordsSkipped: 3,
		RowsWritten:    9,
		Duration:       2 * time.Second,
	}, etl.CacheStats{
		domain.RefSupplier: {Hits: 5, Lookups: 4, Unresolved: 1},
	}, finished)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues(etl.RunStatusSuccess)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.recordsRead))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recordsSkipped))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.rowsWritten))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastDuration))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSuccess))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.nameLookups.WithLabelValues("supplier", "hit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.nameLookups.WithLabelValues("supplier", "store_call")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.nameLookups.WithLabelValues("supplier", "unresolved")))
}

func TestExportMetrics_FailedRunKeepsLastSuccess(t *testing.T) {
	m := New(nil)
	m.RecordRun(etl.RunStatusSuccess, &etl.Result{}, nil, time.Unix(100, 0))
	m.RecordRun(etl.RunStatusError, nil, nil, time.Unix(200, 0))

	assert.Equal(t, 100.0, testutil.ToFloat64(m.lastSuccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues(etl.RunStatusError)))
}

func TestExportMetrics_WriteTextfile(t *testing.T) {
	m := New(nil)
	m.RecordRun(etl.RunStatusSuccess, &etl.Result{RowsWritten: 4}, nil, time.Now())

	path := filepath.Join(t.TempDir(), "collector", "prodexport.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "prodexport_rows_written_total 4"))
}
