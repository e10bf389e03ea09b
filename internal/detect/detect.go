// Package detect scores extracted text against each registered standard's
// lexical signature. Scoring counts distinct signature phrases; there are
// no learned weights, so the same text always yields the same verdict.
package detect

import (
	"strings"

	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
)

// Result is the detector's verdict for one document.
type Result struct {
	StandardID model.StandardID `json:"standard_id"`
	Score      int              `json:"score"`
}

// Detect picks the standard whose signature phrases appear most often in
// the raw text, case-insensitive and whitespace-normalized. Ties break
// toward registry declaration order. A zero maximum means unknown.
func Detect(extraction *model.ExtractionResult, reg *registry.Registry) Result {
	text := normalize(extraction.RawText)

	best := Result{StandardID: model.StandardUnknown}
	for _, schema := range reg.AllStandards() {
		score := 0
		for _, phrase := range schema.Signatures {
			if strings.Contains(text, normalize(phrase)) {
				score++
			}
		}
		// Strictly greater: first-registered wins ties.
		if score > best.Score {
			best = Result{StandardID: schema.ID, Score: score}
		}
	}

	zap.L().Debug("detect: standard scored",
		zap.String("standard", string(best.StandardID)),
		zap.Int("score", best.Score),
	)
	return best
}

// mining terminology used to gate the pipeline: a document matching too few
// of these is not a technical report at all.
var technicalTerms = []string{
	"jorc", "ni 43-101", "perc", "samrec", "cbrr",
	"mineral resource", "ore reserve", "competent person", "qualified person",
	"geological interpretation", "sampling", "drilling",
	"resource estimation", "grade", "tonnage", "cut-off",
}

const technicalTermFloor = 3

// assay-style column names. Lab exports often carry no report prose at all,
// so table headers alone must be able to pass the gate.
var assayHeaderTerms = []string{
	"sample", "depth", "assay", "grade", "tonnage", "recovery",
	"g/t", "ppm", "%",
}

// ClassifyExtraction classifies a full extraction. Prose classification runs
// first; a document whose text reads as neither still counts as a technical
// report when one of its tables looks like assay data.
func ClassifyExtraction(extraction *model.ExtractionResult) model.DocumentType {
	docType := ClassifyDocument(extraction.RawText)
	if docType == model.DocTypeTechnicalReport {
		return docType
	}
	for _, table := range extraction.Tables {
		hits := 0
		for _, header := range table.Headers {
			h := strings.ToLower(header)
			for _, term := range assayHeaderTerms {
				if strings.Contains(h, term) {
					hits++
					break
				}
			}
		}
		if hits >= 2 {
			return model.DocTypeTechnicalReport
		}
	}
	return docType
}

// ClassifyDocument decides whether the text reads like a mining technical
// report before the standard-specific stages run.
func ClassifyDocument(rawText string) model.DocumentType {
	text := normalize(rawText)
	matches := 0
	for _, term := range technicalTerms {
		if strings.Contains(text, term) {
			matches++
		}
	}
	switch {
	case matches >= technicalTermFloor:
		return model.DocTypeTechnicalReport
	case len(rawText) > 500:
		return model.DocTypeGeneral
	default:
		return model.DocTypeUnknown
	}
}

// normalize lowercases and collapses whitespace runs so signature phrases
// match across line breaks and formatting.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
