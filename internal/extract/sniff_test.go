package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orestack/minereport/internal/model"
)

func TestSniffMagicBytesWin(t *testing.T) {
	// A PDF signature beats a misleading extension and declared type.
	assert.Equal(t, model.DocKindPDF, Sniff("report.csv", []byte("%PDF-1.7 stream"), "text/csv"))
}

func TestSniffZipContainerMembers(t *testing.T) {
	docx := append([]byte("PK\x03\x04"), []byte("....word/document.xml....")...)
	assert.Equal(t, model.DocKindDOCX, Sniff("upload.bin", docx, ""))

	xlsx := append([]byte("PK\x03\x04"), []byte("....xl/workbook.xml....")...)
	assert.Equal(t, model.DocKindXLSX, Sniff("upload.bin", xlsx, ""))

	plain := []byte("PK\x03\x04 nothing notable")
	assert.Equal(t, model.DocKindZIP, Sniff("bundle.zip", plain, ""))
	assert.Equal(t, model.DocKindDOCX, Sniff("memo.docx", plain, ""))
	assert.Equal(t, model.DocKindXLSX, Sniff("grades.XLSX", plain, ""))
}

func TestSniffExtension(t *testing.T) {
	assert.Equal(t, model.DocKindCSV, Sniff("assays.CSV", []byte("plain words here"), ""))
	assert.Equal(t, model.DocKindCSV, Sniff("assays.tsv", []byte("plain words here"), ""))
	assert.Equal(t, model.DocKindText, Sniff("notes.txt", []byte("plain words here"), ""))
	assert.Equal(t, model.DocKindText, Sniff("readme.md", []byte("plain words here"), ""))
}

func TestSniffDeclaredType(t *testing.T) {
	body := []byte("no signature no extension")
	assert.Equal(t, model.DocKindPDF, Sniff("upload", body, "application/pdf"))
	assert.Equal(t, model.DocKindText, Sniff("upload", body, "text/plain"))
	assert.Equal(t, model.DocKindZIP, Sniff("upload", body, "application/zip"))
}

func TestSniffContentFallback(t *testing.T) {
	assert.Equal(t, model.DocKindCSV, Sniff("upload", []byte("a,b,c\n1,2,3\n"), ""))
	assert.Equal(t, model.DocKindCSV, Sniff("upload", []byte("a\tb\tc\n"), ""))
	assert.Equal(t, model.DocKindText, Sniff("upload", []byte("just a sentence\nand another"), ""))
	assert.Equal(t, model.DocKindUnknown, Sniff("upload", []byte{0xff, 0xfe, 0x00, 0x01}, ""))
}
