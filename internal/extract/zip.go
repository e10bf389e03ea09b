package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/orestack/minereport/internal/model"
)

// maxZipMembers bounds how many archive members one upload may carry.
const maxZipMembers = 64

// ZIPExtractor opens an uploaded archive and runs the matching extractor on
// every supported member, merging the results. A truncated or corrupt
// archive is unparsable; an archive with no supported members yields an
// empty result.
type ZIPExtractor struct {
	service *Service
}

func (e *ZIPExtractor) Kind() model.DocKind { return model.DocKindZIP }

func (e *ZIPExtractor) Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "zip: %v", err)
	}
	if len(zr.File) > maxZipMembers {
		return nil, eris.Wrapf(ErrTooLarge, "zip: %d members (limit %d)", len(zr.File), maxZipMembers)
	}

	merged := &model.ExtractionResult{}
	var raw strings.Builder

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "zip: cancelled")
		}
		if f.FileInfo().IsDir() || strings.HasPrefix(path.Base(f.Name), ".") {
			continue
		}

		member, err := readZipMember(f, e.service.limits.MaxBytes)
		if err != nil {
			return nil, err
		}

		kind := Sniff(f.Name, member, "")
		// Nested archives are not recursed into.
		if kind == model.DocKindZIP || kind == model.DocKindUnknown {
			continue
		}
		inner, ok := e.service.byKind[kind]
		if !ok {
			continue
		}

		res, err := inner.Extract(ctx, member)
		if err != nil {
			// One bad member does not sink the archive.
			continue
		}
		merged.Sections = append(merged.Sections, res.Sections...)
		merged.Tables = append(merged.Tables, res.Tables...)
		if res.RawText != "" {
			if raw.Len() > 0 {
				raw.WriteByte('\n')
			}
			raw.WriteString(res.RawText)
		}
	}

	merged.RawText = raw.String()
	return merged, nil
}

// readZipMember decompresses one member, refusing anything that inflates
// past the service byte ceiling (zip bombs).
func readZipMember(f *zip.File, maxBytes int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "zip: open member %s: %v", f.Name, err)
	}
	defer rc.Close() //nolint:errcheck

	limit := maxBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "zip: read member %s: %v", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, eris.Wrapf(ErrTooLarge, "zip: member %s exceeds %d bytes", f.Name, limit)
	}
	return data, nil
}
