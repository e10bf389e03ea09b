package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
)

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestZIPExtractorMergesMembers(t *testing.T) {
	svc := NewService(DefaultLimits())
	archive := buildZip(t, map[string]string{
		"assays.csv": "Hole ID,Au (g/t)\nDDH-001,2.1\n",
		"notes.txt":  "1. Introduction\nProject background here.",
		".DS_Store":  "junk",
	})

	res, err := svc.Extract(context.Background(), "bundle.zip", archive, "")
	require.NoError(t, err)

	assert.Equal(t, model.DocKindZIP, res.Kind)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, []string{"Hole ID", "Au (g/t)"}, res.Tables[0].Headers)
	require.NotEmpty(t, res.Sections)
	assert.Contains(t, res.RawText, "Project background")
	assert.NotContains(t, res.RawText, "junk")
}

func TestZIPExtractorSkipsUnsupportedMembers(t *testing.T) {
	svc := NewService(DefaultLimits())
	archive := buildZip(t, map[string]string{
		"binary.bin": "\xff\xfe\x00\x01",
		"notes.txt":  "readable text",
	})

	res, err := svc.Extract(context.Background(), "bundle.zip", archive, "")
	require.NoError(t, err)
	assert.Equal(t, "readable text", res.RawText)
}

func TestZIPExtractorTooManyMembers(t *testing.T) {
	members := make(map[string]string, maxZipMembers+1)
	for i := 0; i <= maxZipMembers; i++ {
		members["file"+strings.Repeat("x", i)+".txt"] = "a"
	}
	archive := buildZip(t, members)

	e := &ZIPExtractor{service: NewService(DefaultLimits())}
	_, err := e.Extract(context.Background(), archive)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestZIPExtractorCorruptArchive(t *testing.T) {
	e := &ZIPExtractor{service: NewService(DefaultLimits())}
	_, err := e.Extract(context.Background(), []byte("PK\x03\x04 truncated"))
	assert.ErrorIs(t, err, ErrUnparsable)
}

const minimalDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Project Overview</w:t></w:r></w:p>
    <w:p><w:r><w:t>The deposit hosts gold mineralisation.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Category</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Tonnage</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>Measured</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1000000</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestDOCXExtractor(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   minimalDocumentXML,
	})

	e := &DOCXExtractor{}
	res, err := e.Extract(context.Background(), data)
	require.NoError(t, err)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, "Project Overview", res.Sections[0].Title)
	assert.Equal(t, 1, res.Sections[0].Level)
	assert.Contains(t, res.Sections[0].Text, "gold mineralisation")

	require.Len(t, res.Tables, 1)
	assert.Equal(t, []string{"Category", "Tonnage"}, res.Tables[0].Headers)
	require.Len(t, res.Tables[0].Rows, 1)
	assert.Equal(t, []string{"Measured", "1000000"}, res.Tables[0].Rows[0])
}

func TestDOCXExtractorMissingDocument(t *testing.T) {
	data := buildZip(t, map[string]string{"other.xml": "<x/>"})
	e := &DOCXExtractor{}
	_, err := e.Extract(context.Background(), data)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestDocxHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, docxHeadingLevel("Heading1"))
	assert.Equal(t, 3, docxHeadingLevel("heading3"))
	assert.Equal(t, 1, docxHeadingLevel("Title"))
	assert.Equal(t, 0, docxHeadingLevel("BodyText"))
	assert.Equal(t, 0, docxHeadingLevel(""))
}
