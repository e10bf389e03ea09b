package mapper

import (
	"strings"

	"github.com/orestack/minereport/internal/model"
)

// Canonical section keys and the title keywords that claim them.
var sectionKeywords = []struct {
	key      model.SectionKey
	keywords []string
}{
	{"geology", []string{"geology", "geological", "geologia"}},
	{"drilling", []string{"drilling", "drill", "sondagem"}},
	{"sampling", []string{"sampling", "sample preparation", "amostragem"}},
	{"resource_estimate", []string{"resource estimate", "mineral resource", "resource estimation", "recursos"}},
	{"reserve_estimate", []string{"ore reserve", "mineral reserve", "reservas"}},
	{"qa_qc", []string{"qa/qc", "qaqc", "quality assurance", "quality control"}},
	{"metallurgy", []string{"metallurg", "processing", "beneficiamento"}},
	{"environment", []string{"environment", "permitting", "licenciamento", "ambiental"}},
}

const uncertainSectionFloor = 50

// canonicalSections assigns extracted sections to canonical keys by title
// keywords. Sections too short to be useful are marked uncertain so the
// review router can flag them. Unclaimed content is preserved under a
// generic key rather than dropped.
func canonicalSections(extraction *model.ExtractionResult) map[model.SectionKey]model.SectionContent {
	out := make(map[model.SectionKey]model.SectionContent)

	for _, s := range extraction.Sections {
		title := strings.ToLower(s.Title)
		if title == "" {
			continue
		}
		for _, def := range sectionKeywords {
			if _, taken := out[def.key]; taken {
				continue
			}
			if containsAny(title, def.keywords) {
				content := model.SectionContent{Title: s.Title, Text: s.Text}
				if len(s.Text) < uncertainSectionFloor {
					content.Uncertain = true
					content.Hint = "section content too short to be reliable"
				}
				out[def.key] = content
				break
			}
		}
	}

	if len(out) == 0 && extraction.RawText != "" {
		text := extraction.RawText
		if len(text) > 500 {
			text = text[:500]
		}
		out["main"] = model.SectionContent{
			Title:     "Main Content",
			Text:      text,
			Uncertain: true,
			Hint:      "no structured sections identified",
		}
	}
	return out
}
