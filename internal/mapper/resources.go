package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/units"
)

// classification column headers across the supported standards.
var classificationHeaders = []string{"classification", "category", "class", "categoria", "classificacao", "classificação"}

var tonnageHeaders = []string{"tonnage", "tonnes", "toneladas", "tonelagem", "mass"}

var gradeHeaders = []string{"grade", "teor"}

// extractBuckets prefers a proper resource table and falls back to a prose
// sweep when the document has none.
func extractBuckets(extraction *model.ExtractionResult) []model.ResourceBucket {
	if buckets := bucketsFromTables(extraction.Tables); len(buckets) > 0 {
		return buckets
	}
	return bucketsFromText(extraction.RawText)
}

// bucketsFromTables walks every table looking for a resource-statement
// layout: a classification column plus tonnage and grade columns. Values
// land in canonical units with full confidence since the table located
// them precisely.
func bucketsFromTables(tables []model.Table) []model.ResourceBucket {
	var out []model.ResourceBucket
	for _, t := range tables {
		classCol, tonCol, gradeCol := -1, -1, -1
		var tonUnit, gradeUnit string
		for i, h := range t.Headers {
			label, unit := SplitHeaderUnit(h)
			norm := normalizeLabel(label)
			switch {
			case classCol < 0 && containsAny(norm, classificationHeaders):
				classCol = i
			case tonCol < 0 && containsAny(norm, tonnageHeaders):
				tonCol, tonUnit = i, unit
			case gradeCol < 0 && (containsAny(norm, gradeHeaders) || units.Canonical(unit) == units.GramsPerTonne):
				gradeCol, gradeUnit = i, unit
			}
		}
		if classCol < 0 || tonCol < 0 || gradeCol < 0 {
			continue
		}
		if tonUnit == "" {
			tonUnit = units.Tonnes
		}
		if gradeUnit == "" {
			gradeUnit = units.GramsPerTonne
		}

		for _, row := range t.Rows {
			if len(row) <= classCol || len(row) <= tonCol || len(row) <= gradeCol {
				continue
			}
			class, ok := ParseClassification(row[classCol])
			if !ok {
				continue
			}
			tonnage, err1 := ParseNumber(row[tonCol])
			grade, err2 := ParseNumber(row[gradeCol])
			if err1 != nil || err2 != nil {
				continue
			}
			tonnage, _, err1 = units.ToCanonical(tonnage, tonUnit)
			grade, _, err2 = units.ToCanonical(grade, gradeUnit)
			if err1 != nil || err2 != nil {
				continue
			}
			out = append(out, model.ResourceBucket{
				Classification: class,
				Tonnage:        tonnage,
				Grade:          grade,
				Confidence:     model.ConfidenceExact,
				SourceText:     strings.Join(row, " | "),
			})
		}
	}
	return out
}

// freeTextCategories drives the prose sweep, in classification order.
var freeTextCategories = []struct {
	label string
	class model.Classification
}{
	{"Measured", model.ClassMeasured},
	{"Indicated", model.ClassIndicated},
	{"Inferred", model.ClassInferred},
	{"Proved", model.ClassProved},
	{"Probable", model.ClassProbable},
}

// bucketsFromText recovers "<category> ... <tonnage> ... <grade>" patterns
// from prose when no resource table was found. These carry free-text
// confidence and are expected to be reviewed.
func bucketsFromText(text string) []model.ResourceBucket {
	var out []model.ResourceBucket
	for _, cat := range freeTextCategories {
		re := regexp.MustCompile(fmt.Sprintf(
			`(?i)%s[^\d]*([\d.,]+)\s*(Mt|kt|t)?[^\d]*([\d.,]+)\s*(g/t|%%|ppm)?`, cat.label))
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		tonnage, err1 := ParseNumber(m[1])
		grade, err2 := ParseNumber(m[3])
		if err1 != nil || err2 != nil {
			continue
		}
		if m[2] != "" {
			if v, _, err := units.ToCanonical(tonnage, m[2]); err == nil {
				tonnage = v
			}
		}
		if m[4] != "" {
			if v, _, err := units.ToCanonical(grade, m[4]); err == nil {
				grade = v
			}
		}
		out = append(out, model.ResourceBucket{
			Classification: cat.class,
			Tonnage:        tonnage,
			Grade:          grade,
			Confidence:     model.ConfidenceFreeText,
			SourceText:     strings.TrimSpace(m[0]),
		})
	}
	return out
}

// ParseClassification maps a classification cell onto the canonical
// categories, accepting the English and Portuguese label families.
func ParseClassification(s string) (model.Classification, bool) {
	norm := normalizeLabel(s)
	switch {
	case strings.Contains(norm, "measured"), strings.Contains(norm, "medid"):
		return model.ClassMeasured, true
	case strings.Contains(norm, "indicated"), strings.Contains(norm, "indicad"):
		return model.ClassIndicated, true
	case strings.Contains(norm, "inferred"), strings.Contains(norm, "inferid"):
		return model.ClassInferred, true
	case strings.Contains(norm, "proved"), strings.Contains(norm, "proven"), strings.Contains(norm, "provad"):
		return model.ClassProved, true
	case strings.Contains(norm, "probable"), strings.Contains(norm, "provável"), strings.Contains(norm, "provavel"):
		return model.ClassProbable, true
	}
	return "", false
}

// commoditySymbols maps assay column symbols to the commodity vocabulary.
var commoditySymbols = map[string]model.Commodity{
	"au": model.CommodityGold,
	"ag": model.CommoditySilver,
	"cu": model.CommodityCopper,
	"fe": model.CommodityIron,
	"li": model.CommodityLithium,
	"ni": model.CommodityNickel,
	"zn": model.CommodityZinc,
}

// mapAssayColumns turns assay columns like "Au (g/t)" or "Cu (%)" into
// canonical per-element grade fields (grade_au, grade_cu, ...) holding the
// column mean in grams per tonne. An exact header with a registered grade
// unit counts as an exact alias match.
func mapAssayColumns(report *model.CanonicalReport, extraction *model.ExtractionResult) {
	for _, t := range extraction.Tables {
		for i, h := range t.Headers {
			label, unit := SplitHeaderUnit(h)
			sym := strings.ToLower(strings.TrimSpace(label))
			commodity, known := commoditySymbols[sym]
			if !known || units.Canonical(unit) != units.GramsPerTonne {
				continue
			}

			sum, n := 0.0, 0
			for _, row := range t.Rows {
				if i >= len(row) {
					continue
				}
				v, err := ParseNumber(row[i])
				if err != nil {
					continue
				}
				canonical, _, err := units.ToCanonical(v, unit)
				if err != nil {
					continue
				}
				sum += canonical
				n++
			}
			if n == 0 {
				continue
			}
			key := "grade_" + sym
			report.SetField(key, model.NumberValue(sum/float64(n), units.GramsPerTonne, h, model.ConfidenceExact))
			if report.Commodity == model.CommodityUnknown {
				report.Commodity = commodity
			}
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
