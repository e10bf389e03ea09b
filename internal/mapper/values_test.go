package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{"-3.5", -3.5},
		{"1,234,567.8", 1234567.8},
		{"1.234.567,8", 1234567.8},
		{"1,000,000", 1000000},
		{"2,5", 2.5},      // decimal comma
		{"1,500", 1500},   // lone comma with three digits reads as thousands
		{"10.5 m", 10.5},  // trailing unit text
		{"Au: 2.3 g/t", 2.3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseNumberRejectsNonNumeric(t *testing.T) {
	_, err := ParseNumber("n/a")
	assert.Error(t, err)

	_, err = ParseNumber("")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-06-30", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"30 June 2023", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"June 30, 2023", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"June 2023", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseDate("sometime last year")
	assert.Error(t, err)
}

func TestSplitHeaderUnit(t *testing.T) {
	label, unit := SplitHeaderUnit("Au (g/t)")
	assert.Equal(t, "Au", label)
	assert.Equal(t, "g/t", unit)

	label, unit = SplitHeaderUnit("Tonnage (Mt)")
	assert.Equal(t, "Tonnage", label)
	assert.Equal(t, "Mt", unit)

	label, unit = SplitHeaderUnit("Classification")
	assert.Equal(t, "Classification", label)
	assert.Empty(t, unit)
}
