package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
)

func schemaFor(t *testing.T, id model.StandardID) *model.StandardSchema {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	schema, ok := reg.Lookup(id)
	require.True(t, ok)
	return schema
}

func TestExtractPersonsJORC(t *testing.T) {
	text := "The information in this report is based on work compiled by the Competent Person: John Smith, AusIMM Fellow."

	persons := extractPersons(text, schemaFor(t, model.StandardJORC))

	require.Len(t, persons, 1)
	assert.Equal(t, "John Smith", persons[0].Name)
	assert.Equal(t, "AusIMM Fellow", persons[0].Affiliation)
	assert.Equal(t, "Competent Person", persons[0].Role)
	assert.False(t, persons[0].Uncertain)
}

func TestExtractPersonsNI43101(t *testing.T) {
	text := "This technical report was prepared by the Qualified Person Jane Doe (SME Registered Member)."

	persons := extractPersons(text, schemaFor(t, model.StandardNI43101))

	require.Len(t, persons, 1)
	assert.Equal(t, "Jane Doe", persons[0].Name)
	assert.Equal(t, "Qualified Person", persons[0].Role)
}

func TestExtractPersonsCBRR(t *testing.T) {
	text := "Responsável Técnico: Carlos Eduardo Silva, CREA 123456."

	persons := extractPersons(text, schemaFor(t, model.StandardCBRR))

	require.Len(t, persons, 1)
	assert.Equal(t, "Carlos Eduardo Silva", persons[0].Name)
	assert.Equal(t, "Pessoa Qualificada", persons[0].Role)
}

func TestExtractPersonsDeduplicates(t *testing.T) {
	text := "Competent Person: John Smith. Later restated: the Competent Person John Smith confirmed the estimate."

	persons := extractPersons(text, schemaFor(t, model.StandardJORC))

	require.Len(t, persons, 1)
}

func TestExtractPersonsPlaceholderWhenMissing(t *testing.T) {
	persons := extractPersons("No signatory anywhere in this text.", schemaFor(t, model.StandardJORC))

	require.Len(t, persons, 1)
	assert.Empty(t, persons[0].Name)
	assert.True(t, persons[0].Uncertain)
	assert.Equal(t, "Competent Person", persons[0].Role)
}
