package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/store"
)

func TestIngestBatchMixedOutcomes(t *testing.T) {
	p := newTestPipeline(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "gold-ridge.txt")
	require.NoError(t, os.WriteFile(good, []byte(sampleReportText), 0o644))

	bad := filepath.Join(dir, "memo.txt")
	require.NoError(t, os.WriteFile(bad, []byte("Quarterly marketing update with nothing geological in it."), 0o644))

	missing := filepath.Join(dir, "does-not-exist.txt")

	outcomes, err := p.IngestBatch(context.Background(), []string{good, bad, missing}, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byFile := make(map[string]BatchOutcome)
	for _, o := range outcomes {
		byFile[o.File] = o
	}

	assert.NotEmpty(t, byFile[good].ReportID)
	assert.Empty(t, byFile[good].Err)

	assert.Empty(t, byFile[bad].ReportID)
	assert.Contains(t, byFile[bad].Err, "not a technical report")

	assert.Empty(t, byFile[missing].ReportID)
	assert.NotEmpty(t, byFile[missing].Err)

	// Only the good file produced a stored report.
	reports, err := p.store.ListReports(context.Background(), store.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestIngestBatchEmpty(t *testing.T) {
	p := newTestPipeline(t)
	outcomes, err := p.IngestBatch(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
