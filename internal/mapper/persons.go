package mapper

import (
	"regexp"
	"strings"

	"github.com/orestack/minereport/internal/model"
)

// personPattern matches "<role term>: Firstname Lastname, Affiliation".
// Role terms depend on the standard: JORC and SAMREC say Competent Person,
// NI 43-101 says Qualified Person, CBRR says Pessoa Qualificada.
var personPattern = `(?:[:\s]+)([A-ZÀ-Ú][a-zà-ú]+(?:\s+[A-ZÀ-Ú][a-zà-ú]+)+)(?:\s*[,(]\s*([A-ZÀ-Ú][^,\n)]{2,60}))?`

// extractPersons pulls the signing person(s) out of prose using the
// detected standard's role terminology. When nothing is found a single
// uncertain placeholder keeps the gap visible to reviewers.
func extractPersons(rawText string, schema *model.StandardSchema) []model.CompetentPerson {
	terms := []string{schema.PersonRole}
	switch schema.ID {
	case model.StandardNI43101:
		terms = append(terms, "QP")
	case model.StandardCBRR:
		terms = append(terms, "PQ", "Responsável Técnico")
	default:
		terms = append(terms, "CP")
	}

	var out []model.CompetentPerson
	seen := make(map[string]bool)
	for _, term := range terms {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term) + personPattern)
		if err != nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(rawText, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, model.CompetentPerson{
				Name:        name,
				Affiliation: strings.TrimRight(strings.TrimSpace(m[2]), ". "),
				Role:        schema.PersonRole,
				Uncertain:   len(name) < 5,
			})
		}
	}

	if len(out) == 0 {
		out = append(out, model.CompetentPerson{
			Role:      schema.PersonRole,
			Uncertain: true,
		})
	}
	return out
}
