package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	return reg
}

func TestDetectJORC(t *testing.T) {
	reg := testRegistry(t)

	res := Detect(&model.ExtractionResult{
		RawText: "This report was prepared in accordance with the JORC Code (JORC 2012) by a Competent Person.",
	}, reg)

	assert.Equal(t, model.StandardJORC, res.StandardID)
	assert.GreaterOrEqual(t, res.Score, 1)
}

func TestDetectNI43101(t *testing.T) {
	reg := testRegistry(t)

	res := Detect(&model.ExtractionResult{
		RawText: "Technical Report prepared under National Instrument NI 43-101 by a Qualified Person using CIM Definition Standards.",
	}, reg)

	assert.Equal(t, model.StandardNI43101, res.StandardID)
	assert.GreaterOrEqual(t, res.Score, 3)
}

func TestDetectCBRR(t *testing.T) {
	reg := testRegistry(t)

	res := Detect(&model.ExtractionResult{
		RawText: "Relatório CBRR de recursos e reservas, registrado na Agência Nacional de Mineração por Pessoa Qualificada.",
	}, reg)

	assert.Equal(t, model.StandardCBRR, res.StandardID)
}

func TestDetectNormalizesAcrossLineBreaks(t *testing.T) {
	reg := testRegistry(t)

	res := Detect(&model.ExtractionResult{
		RawText: "prepared under the\n  JORC\n CODE  by a competent\nperson",
	}, reg)

	assert.Equal(t, model.StandardJORC, res.StandardID)
}

func TestDetectUnknown(t *testing.T) {
	reg := testRegistry(t)

	res := Detect(&model.ExtractionResult{
		RawText: "Quarterly financial statement for the period ending June 30.",
	}, reg)

	assert.Equal(t, model.StandardUnknown, res.StandardID)
	assert.Zero(t, res.Score)
}

func TestClassifyDocument(t *testing.T) {
	technical := "Mineral resource estimate with drilling and sampling data; grade and tonnage per the JORC code."
	assert.Equal(t, model.DocTypeTechnicalReport, ClassifyDocument(technical))

	general := strings.Repeat("Lorem ipsum dolor sit amet consectetur adipiscing elit. ", 20)
	assert.Equal(t, model.DocTypeGeneral, ClassifyDocument(general))

	assert.Equal(t, model.DocTypeUnknown, ClassifyDocument("short note"))
}

func TestClassifyExtractionAcceptsAssayTable(t *testing.T) {
	// Assay exports have no prose; the column headers carry the signal.
	assay := &model.ExtractionResult{
		RawText: "Sample ID,Depth (m),Au (g/t),Cu (%)\nS001,10.5,2.3,1.5\n",
		Tables: []model.Table{{
			Headers: []string{"Sample ID", "Depth (m)", "Au (g/t)", "Cu (%)"},
			Rows:    [][]string{{"S001", "10.5", "2.3", "1.5"}},
		}},
	}
	assert.Equal(t, model.DocTypeTechnicalReport, ClassifyExtraction(assay))
}

func TestClassifyExtractionStillRejectsPlainTables(t *testing.T) {
	contacts := &model.ExtractionResult{
		RawText: "Name,Email\nAda,ada@example.com\n",
		Tables: []model.Table{{
			Headers: []string{"Name", "Email"},
			Rows:    [][]string{{"Ada", "ada@example.com"}},
		}},
	}
	assert.Equal(t, model.DocTypeUnknown, ClassifyExtraction(contacts))

	memo := &model.ExtractionResult{RawText: "Quarterly marketing update."}
	assert.Equal(t, model.DocTypeUnknown, ClassifyExtraction(memo))
}
