// Package extract turns raw uploaded bytes into the uniform intermediate
// representation the rest of the pipeline consumes: sections, tables, and
// raw text. One extractor per supported format, all total over
// malformed-but-well-typed input.
package extract

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/model"
)

// Typed extraction failures. Unparsable input is surfaced to the user with
// a retry prompt; ceiling violations come with guidance to split the input.
var (
	ErrUnparsable = eris.New("extract: unparsable document")
	ErrTooLarge   = eris.New("extract: document too large")
	ErrTimeout    = eris.New("extract: extraction timed out")
)

// Limits bound a single extraction so no upload can hang the worker.
type Limits struct {
	MaxBytes int64
	Timeout  time.Duration
}

// DefaultLimits returns the production ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes: 50 << 20, // 50 MiB
		Timeout:  2 * time.Minute,
	}
}

// Extractor parses one input format into the intermediate representation.
type Extractor interface {
	Kind() model.DocKind
	Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error)
}

// Service selects and runs the extractor for an upload.
type Service struct {
	limits Limits
	byKind map[model.DocKind]Extractor
}

// NewService registers the built-in extractors.
func NewService(limits Limits) *Service {
	s := &Service{
		limits: limits,
		byKind: make(map[model.DocKind]Extractor),
	}
	s.register(&PDFExtractor{})
	s.register(&DOCXExtractor{})
	s.register(&XLSXExtractor{})
	s.register(&CSVExtractor{})
	s.register(&TextExtractor{})
	s.register(&ZIPExtractor{service: s})
	return s
}

func (s *Service) register(e Extractor) {
	s.byKind[e.Kind()] = e
}

// Extract sniffs the format of the upload and runs the matching extractor
// under the configured ceilings. The declared content type is advisory only;
// the file signature and extension win.
func (s *Service) Extract(ctx context.Context, fileName string, data []byte, declaredType string) (*model.ExtractionResult, error) {
	if s.limits.MaxBytes > 0 && int64(len(data)) > s.limits.MaxBytes {
		return nil, eris.Wrapf(ErrTooLarge, "%s: %d bytes (limit %d)", fileName, len(data), s.limits.MaxBytes)
	}

	kind := Sniff(fileName, data, declaredType)
	e, ok := s.byKind[kind]
	if !ok {
		return nil, eris.Wrapf(ErrUnparsable, "%s: unsupported format %q", fileName, kind)
	}

	if s.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.limits.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.Extract(ctx, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, eris.Wrapf(ErrTimeout, "%s: exceeded %s", fileName, s.limits.Timeout)
		}
		return nil, err
	}
	res.Kind = kind
	res.FileName = fileName

	zap.L().Debug("extract: document parsed",
		zap.String("file", fileName),
		zap.String("kind", string(kind)),
		zap.Int("sections", len(res.Sections)),
		zap.Int("tables", len(res.Tables)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}
