package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		from  string
		to    string
		want  float64
	}{
		{"megatonnes to tonnes", 3.5, "Mt", "t", 3.5e6},
		{"kilotonnes to tonnes", 120, "kt", "t", 120000},
		{"tonnes to megatonnes", 2500000, "t", "Mt", 2.5},
		{"ppm to g/t", 1500, "ppm", "g/t", 1500},
		{"percent to g/t", 1.2, "%", "g/t", 12000},
		{"troy oz per tonne to g/t", 1, "oz/t", "g/t", 31.1034768},
		{"feet to meters", 100, "ft", "m", 30.48},
		{"kilometers to meters", 1.5, "km", "m", 1500},
		{"acres to hectares", 10, "acre", "ha", 4.04686},
		{"grams to troy ounces", 31.1034768, "g", "oz t", 1},
		{"same unit", 42, "t", "t", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.want*1e-4+1e-9)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	pairs := []struct{ from, to string }{
		{"Mt", "t"},
		{"kt", "t"},
		{"%", "g/t"},
		{"ppm", "g/t"},
		{"ft", "m"},
		{"acre", "ha"},
		{"oz t", "g"},
	}
	for _, p := range pairs {
		t.Run(p.from+"_"+p.to, func(t *testing.T) {
			there, err := Convert(123.456, p.from, p.to)
			require.NoError(t, err)
			back, err := Convert(there, p.to, p.from)
			require.NoError(t, err)
			assert.InDelta(t, 123.456, back, 1e-6)
		})
	}
}

func TestConvertRejectsCrossDimension(t *testing.T) {
	_, err := Convert(1, "t", "g/t")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedUnitPair)

	_, err = Convert(1, "m", "ha")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedUnitPair)
}

func TestConvertRejectsUnknownUnit(t *testing.T) {
	_, err := Convert(1, "furlong", "m")
	assert.ErrorIs(t, err, ErrUnsupportedUnitPair)

	_, err = Convert(1, "t", "stone")
	assert.ErrorIs(t, err, ErrUnsupportedUnitPair)
}

func TestToCanonical(t *testing.T) {
	v, u, err := ToCanonical(3.5, "Mt")
	require.NoError(t, err)
	assert.Equal(t, "t", u)
	assert.InDelta(t, 3.5e6, v, 1e-6)

	v, u, err = ToCanonical(2.5, "%")
	require.NoError(t, err)
	assert.Equal(t, "g/t", u)
	assert.InDelta(t, 25000, v, 1e-6)

	_, _, err = ToCanonical(1, "bogus")
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("g/t"))
	assert.True(t, Supported("gpt"))
	assert.True(t, Supported("oz t"))
	assert.False(t, Supported("cubits"))
}
