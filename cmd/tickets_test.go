package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orestack/minereport/internal/model"
)

func TestResolvedValueNumber(t *testing.T) {
	resolveNumber, resolveUnit, resolveText, resolveDate = 2.5, "g/t", "", ""
	require.NoError(t, ticketsResolveCmd.Flags().Set("number", "2.5"))
	t.Cleanup(func() {
		resolveNumber, resolveUnit = 0, ""
		ticketsResolveCmd.Flags().Lookup("number").Changed = false
	})

	value, err := resolvedValue(ticketsResolveCmd)
	require.NoError(t, err)
	assert.Equal(t, model.FieldTypeNumber, value.Type)
	assert.InDelta(t, 2.5, value.Number, 1e-9)
	assert.Equal(t, "g/t", value.Unit)
	assert.Equal(t, model.ConfidenceExact, value.Confidence)
}

func TestResolvedValueText(t *testing.T) {
	resolveNumber, resolveText, resolveDate = 0, "Jane Doe", ""
	t.Cleanup(func() { resolveText = "" })

	value, err := resolvedValue(ticketsResolveCmd)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value.Text)
}

func TestResolvedValueDate(t *testing.T) {
	resolveNumber, resolveText, resolveDate = 0, "", "2024-06-30"
	t.Cleanup(func() { resolveDate = "" })

	value, err := resolvedValue(ticketsResolveCmd)
	require.NoError(t, err)
	require.NotNil(t, value.Date)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *value.Date)
}

func TestResolvedValueBadDate(t *testing.T) {
	resolveNumber, resolveText, resolveDate = 0, "", "June 30 2024"
	t.Cleanup(func() { resolveDate = "" })

	_, err := resolvedValue(ticketsResolveCmd)
	assert.Error(t, err)
}

func TestResolvedValueRequiresExactlyOne(t *testing.T) {
	resolveNumber, resolveText, resolveDate = 0, "", ""
	_, err := resolvedValue(ticketsResolveCmd)
	assert.ErrorContains(t, err, "exactly one")

	resolveText, resolveDate = "x", "2024-01-01"
	t.Cleanup(func() { resolveText, resolveDate = "", "" })
	_, err = resolvedValue(ticketsResolveCmd)
	assert.ErrorContains(t, err, "exactly one")
}
