package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/orestack/minereport/internal/model"
)

// TextExtractor handles plain-text uploads and is the shared back end for
// section recovery from any flat text stream.
type TextExtractor struct{}

func (e *TextExtractor) Kind() model.DocKind { return model.DocKindText }

func (e *TextExtractor) Extract(ctx context.Context, data []byte) (*model.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "text: cancelled")
	}
	if !utf8.Valid(data) {
		return nil, eris.Wrap(ErrUnparsable, "text: not valid UTF-8")
	}
	text := strings.TrimSpace(string(data))
	return &model.ExtractionResult{
		Sections: SectionsFromText(text),
		RawText:  text,
	}, nil
}

// Heading shapes seen across technical reports: numbered headings,
// "Section N ..." and "Item N ..." lines.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*(\d+(?:\.\d+)*\.?\s+[A-Z][^\n]{8,80})\s*$`),
	regexp.MustCompile(`(?mi)^\s*(section\s+\d+[^\n]{3,80})\s*$`),
	regexp.MustCompile(`(?mi)^\s*(item\s+\d+[^\n]{3,80})\s*$`),
}

type headingMatch struct {
	title string
	start int
	end   int
}

// SectionsFromText splits flat text on recognizable headings. When no
// heading is found the whole text becomes one untitled section so the
// result is never empty for nonempty input.
func SectionsFromText(text string) []model.Section {
	if text == "" {
		return nil
	}

	var found []headingMatch
	for _, p := range headingPatterns {
		for _, loc := range p.FindAllStringSubmatchIndex(text, -1) {
			found = append(found, headingMatch{
				title: strings.TrimSpace(text[loc[2]:loc[3]]),
				start: loc[0],
				end:   loc[1],
			})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	if len(found) == 0 {
		return []model.Section{{Text: text}}
	}

	var sections []model.Section
	if lead := strings.TrimSpace(text[:found[0].start]); lead != "" {
		sections = append(sections, model.Section{Text: lead})
	}
	for i, h := range found {
		end := len(text)
		if i+1 < len(found) {
			end = found[i+1].start
		}
		sections = append(sections, model.Section{
			Title: h.title,
			Text:  strings.TrimSpace(text[h.end:end]),
			Level: headingLevel(h.title),
		})
	}
	return sections
}

// headingLevel derives a nesting level from numbered headings: "3.2.1 ..."
// is level 3. Unnumbered headings are level 1.
func headingLevel(title string) int {
	num, _, ok := strings.Cut(title, " ")
	if !ok {
		return 1
	}
	num = strings.TrimSuffix(num, ".")
	level := strings.Count(num, ".") + 1
	for _, r := range num {
		if (r < '0' || r > '9') && r != '.' {
			return 1
		}
	}
	return level
}
