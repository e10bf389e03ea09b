package mapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
)

func TestCanonicalSections(t *testing.T) {
	long := strings.Repeat("Detailed narrative content. ", 10)
	extraction := &model.ExtractionResult{
		Sections: []model.Section{
			{Title: "4. Geology and Mineralisation", Text: long},
			{Title: "7. Drilling Programme", Text: long},
			{Title: "14. Mineral Resource Estimate", Text: long},
			{Title: "Appendix B", Text: long}, // no canonical key claims this
		},
	}

	sections := canonicalSections(extraction)

	require.Contains(t, sections, model.SectionKey("geology"))
	require.Contains(t, sections, model.SectionKey("drilling"))
	require.Contains(t, sections, model.SectionKey("resource_estimate"))
	assert.Len(t, sections, 3)
	assert.False(t, sections["geology"].Uncertain)
	assert.Equal(t, "4. Geology and Mineralisation", sections["geology"].Title)
}

func TestCanonicalSectionsShortContentUncertain(t *testing.T) {
	extraction := &model.ExtractionResult{
		Sections: []model.Section{
			{Title: "Sampling", Text: "See appendix."},
		},
	}

	sections := canonicalSections(extraction)

	require.Contains(t, sections, model.SectionKey("sampling"))
	assert.True(t, sections["sampling"].Uncertain)
	assert.NotEmpty(t, sections["sampling"].Hint)
}

func TestCanonicalSectionsFallbackMain(t *testing.T) {
	extraction := &model.ExtractionResult{
		RawText: strings.Repeat("Unstructured body text without any headings. ", 30),
	}

	sections := canonicalSections(extraction)

	require.Contains(t, sections, model.SectionKey("main"))
	main := sections["main"]
	assert.True(t, main.Uncertain)
	assert.LessOrEqual(t, len(main.Text), 500)
}

func TestCanonicalSectionsFirstClaimWins(t *testing.T) {
	long := strings.Repeat("text ", 20)
	extraction := &model.ExtractionResult{
		Sections: []model.Section{
			{Title: "Drilling Summary", Text: long},
			{Title: "Additional Drilling Results", Text: "short"},
		},
	}

	sections := canonicalSections(extraction)

	assert.Equal(t, "Drilling Summary", sections["drilling"].Title)
}
