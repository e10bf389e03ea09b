package model

// DocKind identifies a supported input format.
type DocKind string

const (
	DocKindPDF     DocKind = "pdf"
	DocKindDOCX    DocKind = "docx"
	DocKindXLSX    DocKind = "xlsx"
	DocKindCSV     DocKind = "csv"
	DocKindZIP     DocKind = "zip"
	DocKindText    DocKind = "text"
	DocKindUnknown DocKind = "unknown"
)

// Section is one structural unit of an extracted document.
type Section struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
}

// Table is a header/rows grid lifted from a document. Cells stay as raw
// strings; typing is resolved by the field mapper, not the extractor.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ExtractionResult is the uniform intermediate representation every format
// extractor produces. A structurally valid document with no recognizable
// content yields a result with zero sections, not an error.
type ExtractionResult struct {
	Kind     DocKind   `json:"kind"`
	FileName string    `json:"file_name,omitempty"`
	Sections []Section `json:"sections,omitempty"`
	Tables   []Table   `json:"tables,omitempty"`
	RawText  string    `json:"raw_text"`
}

// DocumentType classifies what kind of document the text appears to be,
// gating the mining-specific pipeline stages.
type DocumentType string

const (
	DocTypeTechnicalReport DocumentType = "technical_report"
	DocTypeGeneral         DocumentType = "general"
	DocTypeUnknown         DocumentType = "unknown"
)
