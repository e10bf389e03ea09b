package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchOutcome records the result of one file in a batch ingest.
type BatchOutcome struct {
	File     string `json:"file"`
	ReportID string `json:"report_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Tickets  int    `json:"tickets"`
	Err      string `json:"error,omitempty"`
}

// IngestBatch ingests many files concurrently. One bad file never aborts the
// batch; its outcome carries the error instead.
func (p *Pipeline) IngestBatch(ctx context.Context, paths []string, concurrency int) ([]BatchOutcome, error) {
	if len(paths) == 0 {
		zap.L().Info("pipeline: no files to ingest")
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("files", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	outcomes := make([]BatchOutcome, 0, len(paths))
	var succeeded, failed atomic.Int64

	record := func(o BatchOutcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	for _, path := range paths {
		g.Go(func() error {
			log := zap.L().With(zap.String("file", path))

			data, err := os.ReadFile(path)
			if err != nil {
				failed.Add(1)
				log.Error("pipeline: read failed", zap.Error(err))
				record(BatchOutcome{File: path, Err: err.Error()})
				return nil
			}

			report, tickets, err := p.Ingest(gctx, filepath.Base(path), data, "")
			if err != nil {
				failed.Add(1)
				log.Error("pipeline: ingest failed", zap.Error(err))
				record(BatchOutcome{File: path, Err: err.Error()})
				return nil // one failure never aborts the batch
			}

			succeeded.Add(1)
			record(BatchOutcome{
				File:     path,
				ReportID: report.ID,
				Status:   string(report.Status),
				Tickets:  len(tickets),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, eris.Wrap(err, "pipeline: batch")
	}

	zap.L().Info("pipeline: batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return outcomes, nil
}
