// Package units converts mass, grade, length, and area values between the
// unit systems used by the supported reporting standards. All factors live
// in one table so call sites can never drift apart.
package units

import (
	"github.com/rotisserie/eris"
)

// ErrUnsupportedUnitPair indicates a conversion with no registered factor.
// If the schema registry is well formed this never happens in production;
// it is a configuration defect, not a user-facing failure.
var ErrUnsupportedUnitPair = eris.New("units: unsupported unit pair")

// Dimension groups units that convert among each other.
type Dimension string

const (
	DimMass   Dimension = "mass"
	DimGrade  Dimension = "grade"
	DimLength Dimension = "length"
	DimArea   Dimension = "area"
)

// Canonical units per dimension.
const (
	Tonnes        = "t"   // mass
	GramsPerTonne = "g/t" // grade
	Meters        = "m"   // length
	Hectares      = "ha"  // area
)

// GramsPerTroyOunce is the exact mass of one troy ounce in grams.
const GramsPerTroyOunce = 31.1034768

type unit struct {
	dim    Dimension
	factor float64 // multiplier to the dimension's canonical unit
}

// table maps unit symbols to their dimension and canonical factor.
// Factors are exact where the defining constant is exact.
var table = map[string]unit{
	// Mass, canonical unit: metric tonnes.
	"t":      {DimMass, 1},
	"tonnes": {DimMass, 1},
	"kt":     {DimMass, 1e3},
	"Mt":     {DimMass, 1e6},
	"kg":     {DimMass, 1e-3},
	"g":      {DimMass, 1e-6},
	"lb":     {DimMass, 0.45359237e-3},
	"oz t":   {DimMass, GramsPerTroyOunce * 1e-6},
	"st":     {DimMass, 0.90718474}, // short ton
	"lt":     {DimMass, 1.0160469088},

	// Grade, canonical unit: grams per tonne.
	"g/t":  {DimGrade, 1},
	"gpt":  {DimGrade, 1},
	"ppm":  {DimGrade, 1},
	"ppb":  {DimGrade, 1e-3},
	"%":    {DimGrade, 1e4},
	"pct":  {DimGrade, 1e4},
	"oz/t": {DimGrade, GramsPerTroyOunce}, // troy ounces per metric tonne
	"kg/t": {DimGrade, 1e3},

	// Length, canonical unit: meters.
	"m":  {DimLength, 1},
	"km": {DimLength, 1e3},
	"cm": {DimLength, 1e-2},
	"ft": {DimLength, 0.3048},

	// Area, canonical unit: hectares.
	"ha":   {DimArea, 1},
	"km2":  {DimArea, 100},
	"m2":   {DimArea, 1e-4},
	"acre": {DimArea, 0.40468564224},
}

// Convert re-expresses value from one unit in another. Both units must be
// registered and share a dimension, otherwise ErrUnsupportedUnitPair.
func Convert(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	fu, ok := table[from]
	if !ok {
		return 0, eris.Wrapf(ErrUnsupportedUnitPair, "unknown unit %q", from)
	}
	tu, ok := table[to]
	if !ok {
		return 0, eris.Wrapf(ErrUnsupportedUnitPair, "unknown unit %q", to)
	}
	if fu.dim != tu.dim {
		return 0, eris.Wrapf(ErrUnsupportedUnitPair, "%s (%s) to %s (%s)", from, fu.dim, to, tu.dim)
	}
	return value * fu.factor / tu.factor, nil
}

// Supported reports whether a unit symbol is registered.
func Supported(u string) bool {
	_, ok := table[u]
	return ok
}

// Canonical returns the canonical unit for the dimension of u, or empty
// string if u is not registered.
func Canonical(u string) string {
	t, ok := table[u]
	if !ok {
		return ""
	}
	switch t.dim {
	case DimMass:
		return Tonnes
	case DimGrade:
		return GramsPerTonne
	case DimLength:
		return Meters
	case DimArea:
		return Hectares
	}
	return ""
}

// ToCanonical converts value into the canonical unit of its dimension.
func ToCanonical(value float64, from string) (float64, string, error) {
	canon := Canonical(from)
	if canon == "" {
		return 0, "", eris.Wrapf(ErrUnsupportedUnitPair, "unknown unit %q", from)
	}
	v, err := Convert(value, from, canon)
	return v, canon, err
}
