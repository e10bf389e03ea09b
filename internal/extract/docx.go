package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/orestack/minereport/internal/model"
)

// DOCXExtractor reads word/document.xml out of the OOXML container and
// walks its paragraph stream. Heading styles become titled sections;
// word tables become Table grids.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Kind() model.DocKind { return model.DocKindDOCX }

func (e *DOCXExtractor) Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "docx: %v", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, eris.Wrap(ErrUnparsable, "docx: word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, eris.Wrapf(ErrUnparsable, "docx: open document.xml: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	decoder := xml.NewDecoder(rc)

	var (
		sections     []model.Section
		tables       []model.Table
		raw          strings.Builder
		paragraph    strings.Builder
		style        string
		inParagraph  bool
		curTable     *model.Table
		curRow       []string
		cellText     strings.Builder
		inCell       bool
		tokenBudget  int
	)

	flushParagraph := func() {
		text := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if text == "" {
			return
		}
		if raw.Len() > 0 {
			raw.WriteByte('\n')
		}
		raw.WriteString(text)

		if level := docxHeadingLevel(style); level > 0 {
			sections = append(sections, model.Section{Title: text, Text: text, Level: level})
		} else if n := len(sections); n > 0 && sections[n-1].Title != "" {
			s := &sections[n-1]
			if s.Text == s.Title {
				s.Text = text
			} else {
				s.Text += "\n" + text
			}
		} else {
			sections = append(sections, model.Section{Text: text})
		}
	}

	for {
		// Large documents: honor cancellation every so often while decoding.
		tokenBudget++
		if tokenBudget%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "docx: cancelled")
			}
		}

		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				curTable = &model.Table{}
			case "tr":
				curRow = nil
			case "tc":
				inCell = true
				cellText.Reset()
			case "p":
				if !inCell {
					inParagraph = true
					paragraph.Reset()
					style = ""
				}
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			}

		case xml.CharData:
			if inCell {
				cellText.Write(t)
			} else if inParagraph {
				paragraph.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph && !inCell {
					inParagraph = false
					flushParagraph()
				}
			case "tc":
				inCell = false
				curRow = append(curRow, strings.TrimSpace(cellText.String()))
			case "tr":
				if curTable != nil {
					if curTable.Headers == nil {
						curTable.Headers = curRow
					} else {
						curTable.Rows = append(curTable.Rows, curRow)
					}
				}
			case "tbl":
				if curTable != nil && len(curTable.Headers) > 0 {
					tables = append(tables, *curTable)
				}
				curTable = nil
			}
		}
	}

	return &model.ExtractionResult{
		Sections: sections,
		Tables:   tables,
		RawText:  raw.String(),
	}, nil
}

// docxHeadingLevel maps a paragraph style name to a heading level.
// "Heading1" is 1, "Title" is 1, body styles are 0.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	if lower == "title" || lower == "subtitle" {
		return 1
	}
	if rest, ok := strings.CutPrefix(lower, "heading"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
			return n
		}
		return 1
	}
	return 0
}
