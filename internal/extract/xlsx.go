package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/orestack/minereport/internal/model"
)

// XLSXExtractor reads every sheet of a workbook into a Table, first row as
// headers. Empty sheets are skipped; a workbook with no populated sheets
// yields zero tables, not an error.
type XLSXExtractor struct{}

func (e *XLSXExtractor) Kind() model.DocKind { return model.DocKindXLSX }

func (e *XLSXExtractor) Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "xlsx: %v", err)
	}

	var (
		tables []model.Table
		raw    strings.Builder
	)
	for _, sheet := range f.Sheets {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "xlsx: cancelled")
		}

		var table model.Table
		for _, row := range sheet.Rows {
			cells := rowToStrings(row)
			if emptyRow(cells) {
				continue
			}
			if table.Headers == nil {
				table.Headers = cells
			} else {
				table.Rows = append(table.Rows, cells)
			}
			if raw.Len() > 0 {
				raw.WriteByte('\n')
			}
			raw.WriteString(strings.Join(cells, " "))
		}
		if len(table.Headers) > 0 {
			tables = append(tables, table)
		}
	}

	return &model.ExtractionResult{
		Tables:  tables,
		RawText: raw.String(),
	}, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = strings.TrimSpace(c.String())
	}
	return cells
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
