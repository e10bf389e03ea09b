package extract

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/orestack/minereport/internal/model"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// Sniff determines the document kind from the file signature first, the
// extension second, and the declared content type last. Declared types are
// advisory: uploads routinely arrive mislabeled.
func Sniff(fileName string, data []byte, declaredType string) model.DocKind {
	if bytes.HasPrefix(data, pdfMagic) {
		return model.DocKindPDF
	}
	if bytes.HasPrefix(data, zipMagic) {
		return sniffZipContainer(fileName, data)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".tsv":
		return model.DocKindCSV
	case ".txt", ".md":
		return model.DocKindText
	}

	switch strings.ToLower(declaredType) {
	case "application/pdf":
		return model.DocKindPDF
	case "text/csv":
		return model.DocKindCSV
	case "text/plain":
		return model.DocKindText
	case "application/zip":
		return model.DocKindZIP
	}

	// Delimited text without a helpful name still parses as CSV; anything
	// else that looks like text is treated as plain text.
	if looksDelimited(data) {
		return model.DocKindCSV
	}
	if utf8.Valid(data) {
		return model.DocKindText
	}
	return model.DocKindUnknown
}

// sniffZipContainer distinguishes OOXML containers from plain archives by
// looking for their well-known member paths in the central directory.
func sniffZipContainer(fileName string, data []byte) model.DocKind {
	if bytes.Contains(data, []byte("word/document.xml")) {
		return model.DocKindDOCX
	}
	if bytes.Contains(data, []byte("xl/workbook.xml")) {
		return model.DocKindXLSX
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx":
		return model.DocKindDOCX
	case ".xlsx":
		return model.DocKindXLSX
	}
	return model.DocKindZIP
}

// looksDelimited reports whether the first line of text contains a common
// field delimiter.
func looksDelimited(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	head := data
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if len(head) == 0 {
		return false
	}
	return bytes.ContainsAny(head, ",;\t")
}
