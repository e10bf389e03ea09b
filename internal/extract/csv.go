package extract

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/orestack/minereport/internal/model"
)

// CSVExtractor parses delimited text into one Table. Non-UTF8 input is
// decoded as windows-1252 before giving up, since spreadsheet exports from
// desktop tools commonly arrive in legacy encodings.
type CSVExtractor struct{}

func (e *CSVExtractor) Kind() model.DocKind { return model.DocKindCSV }

func (e *CSVExtractor) Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow ragged rows

	var (
		headers []string
		rows    [][]string
	)
	for i := 0; ; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "csv: cancelled")
			}
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(ErrUnparsable, "csv: row %d: %v", i+1, err)
		}
		for j, f := range record {
			record[j] = strings.TrimSpace(f)
		}
		if headers == nil {
			headers = record
			continue
		}
		rows = append(rows, record)
	}

	res := &model.ExtractionResult{RawText: text}
	if len(headers) > 0 {
		res.Tables = []model.Table{{Headers: headers, Rows: rows}}
	}
	return res, nil
}

// decodeText returns the input as UTF-8, transcoding from windows-1252
// when the bytes are not already valid UTF-8.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	enc, err := htmlindex.Get("windows-1252")
	if err != nil {
		return "", eris.Wrap(err, "csv: lookup fallback encoding")
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(decoded) {
		return "", eris.Wrap(ErrUnparsable, "csv: undecodable text encoding")
	}
	return string(decoded), nil
}

// sniffDelimiter picks the delimiter with the most hits in the first line.
func sniffDelimiter(text string) rune {
	head := text
	if i := strings.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', strings.Count(head, ",")
	if c := strings.Count(head, ";"); c > bestCount {
		best, bestCount = ';', c
	}
	if c := strings.Count(head, "\t"); c > bestCount {
		best = '\t'
	}
	return best
}
