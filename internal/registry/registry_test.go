package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
)

func TestNewLoadsEmbeddedStandards(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	all := reg.AllStandards()
	require.Len(t, all, 5)

	ids := make([]model.StandardID, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []model.StandardID{
		model.StandardJORC, model.StandardNI43101, model.StandardCBRR,
		model.StandardPERC, model.StandardSAMREC,
	}, ids)
}

func TestDefaultIsFirstDeclared(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.Equal(t, model.StandardJORC, reg.Default().ID)
}

func TestSchemaForFallsBackToDefault(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	assert.Equal(t, model.StandardCBRR, reg.SchemaFor(model.StandardCBRR).ID)
	assert.Equal(t, model.StandardJORC, reg.SchemaFor(model.StandardUnknown).ID)
	assert.Equal(t, model.StandardJORC, reg.SchemaFor("no-such-standard").ID)
}

func TestLookupDoesNotFallBack(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	_, ok := reg.Lookup(model.StandardUnknown)
	assert.False(t, ok)

	s, ok := reg.Lookup(model.StandardSAMREC)
	require.True(t, ok)
	assert.Equal(t, "Competent Person", s.PersonRole)
}

func TestEveryStandardIsComplete(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	for _, s := range reg.AllStandards() {
		assert.NotEmpty(t, s.Name, s.ID)
		assert.NotEmpty(t, s.PersonRole, s.ID)
		assert.NotEmpty(t, s.Signatures, s.ID)
		assert.NotEmpty(t, s.Fields, s.ID)
		assert.NotEmpty(t, s.Required(), s.ID)

		// Shared canonical keys every schema must carry.
		for _, key := range []string{"project_name", "commodity", "person_name"} {
			assert.NotNil(t, s.ByKey(key), "%s missing %s", s.ID, key)
		}
		for _, class := range []model.Classification{model.ClassMeasured, model.ClassProbable} {
			assert.NotEmpty(t, s.ClassificationLabel(class), "%s missing label for %s", s.ID, class)
		}
	}
}

func TestCBRRUsesLocalTerminology(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	s, ok := reg.Lookup(model.StandardCBRR)
	require.True(t, ok)
	assert.Equal(t, "Pessoa Qualificada", s.PersonRole)
	assert.Equal(t, "Medido", s.ClassificationLabel(model.ClassMeasured))
	assert.Equal(t, "Reserva Provável", s.ClassificationLabel(model.ClassProbable))
	assert.NotNil(t, s.ByKey("anm_process"))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("standards: []"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no standards")

	_, err = Parse([]byte("standards:\n  - id: a\n  - id: a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = Parse([]byte("not yaml: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("standards:\n  - name: missing id\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}
