package metrics_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Upload("csv", nil)
	m.Upload("csv", nil)
	m.Upload("", errors.New("bad"))
	m.PreviewRows(map[string]int{"valid": 3, "duplicate": 1})
	m.PreviewRows(map[string]int{"valid": 2})
	m.Commit(4, time.Now())
	m.Undo(true, nil)
	m.Undo(false, nil)

	expected := `
# HELP ledgerimport_uploads_total Statement uploads by detected format and outcome.
# TYPE ledgerimport_uploads_total counter
ledgerimport_uploads_total{format="csv",outcome="ok"} 2
ledgerimport_uploads_total{format="unknown",outcome="error"} 1
# HELP ledgerimport_preview_rows_total Preview rows built, by status.
# TYPE ledgerimport_preview_rows_total counter
ledgerimport_preview_rows_total{status="duplicate"} 1
ledgerimport_preview_rows_total{status="valid"} 5
# HELP ledgerimport_committed_rows_total Transactions created by committed imports.
# TYPE ledgerimport_committed_rows_total counter
ledgerimport_committed_rows_total 4
# HELP ledgerimport_undos_total Undo requests by outcome.
# TYPE ledgerimport_undos_total counter
ledgerimport_undos_total{outcome="empty"} 1
ledgerimport_undos_total{outcome="ok"} 1
`

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ledgerimport_uploads_total",
		"ledgerimport_preview_rows_total",
		"ledgerimport_committed_rows_total",
		"ledgerimport_undos_total",
	))

	n, err := testutil.GatherAndCount(reg, "ledgerimport_commit_duration_seconds", "ledgerimport_batches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
