// Package convert projects a canonical report into any supported
// standard's schema and back. Misses are data, not errors: a target field
// with no canonical source lands in the unmappable list with a prompt for
// the reviewer instead of being silently dropped.
package convert

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/registry"
	"github.com/orestack/minereport/internal/units"
)

// ProjectedField is one schema field re-expressed in the target standard's
// declared unit.
type ProjectedField struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Required bool              `json:"required"`
	Unit     string            `json:"unit,omitempty"`
	Value    *model.FieldValue `json:"value"`
}

// ResourceRow is one classification bucket under the target standard's
// terminology. Numeric values stay canonical (tonnes, g/t, grams) so a
// round trip back to the canonical report is lossless; DisplayLabel carries
// the standard-specific wording.
type ResourceRow struct {
	Classification model.Classification `json:"classification"`
	DisplayLabel   string               `json:"display_label"`
	Tonnage        float64              `json:"tonnage"`
	Grade          float64              `json:"grade"`
	ContainedMetal float64              `json:"contained_metal"`
	ContainedOzT   *float64             `json:"contained_oz_t,omitempty"`
}

// UnmappableField names a field that could not be carried across
// standards, with a human-readable prompt for manual completion.
type UnmappableField struct {
	Key    string `json:"key"`
	Label  string `json:"label,omitempty"`
	Prompt string `json:"prompt"`
}

// StandardView is a canonical report projected into one standard.
type StandardView struct {
	StandardID     model.StandardID                         `json:"standard_id"`
	StandardName   string                                   `json:"standard_name"`
	RegulatoryBody string                                   `json:"regulatory_body,omitempty"`
	PersonRole     string                                   `json:"person_role"`
	Fields         []ProjectedField                         `json:"fields"`
	Resources      []ResourceRow                            `json:"resources,omitempty"`
	Persons        []model.CompetentPerson                  `json:"persons,omitempty"`
	Sections       map[model.SectionKey]model.SectionContent `json:"sections,omitempty"`
	CommodityLabel string                                   `json:"commodity_label,omitempty"`
}

// Result pairs the projection with everything that did not map.
type Result struct {
	Projected  StandardView      `json:"projected"`
	Unmappable []UnmappableField `json:"unmappable,omitempty"`
}

// Convert projects the report into the target standard. The target id must
// name a registered standard; the detector's "unknown" is not a valid
// export target.
func Convert(report *model.CanonicalReport, targetID model.StandardID, reg *registry.Registry) (*Result, error) {
	schema, ok := reg.Lookup(targetID)
	if !ok {
		return nil, eris.Errorf("convert: unknown target standard %q", targetID)
	}

	view := StandardView{
		StandardID:     schema.ID,
		StandardName:   schema.Name,
		RegulatoryBody: schema.RegulatoryBody,
		PersonRole:     schema.PersonRole,
		Sections:       report.Sections,
		CommodityLabel: commodityLabel(report.Commodity, schema.ID),
	}
	var unmappable []UnmappableField

	for i := range schema.Fields {
		def := &schema.Fields[i]
		v := report.Field(def.CanonicalKey)
		if v.IsMissing() {
			unmappable = append(unmappable, UnmappableField{
				Key:    def.CanonicalKey,
				Label:  def.Label,
				Prompt: "provide equivalent data manually",
			})
			continue
		}
		pv, err := reexpress(v, def.Unit)
		if err != nil {
			return nil, eris.Wrapf(err, "convert: field %s", def.CanonicalKey)
		}
		view.Fields = append(view.Fields, ProjectedField{
			Key:      def.CanonicalKey,
			Label:    def.Label,
			Required: def.Required,
			Unit:     def.Unit,
			Value:    pv,
		})
	}

	// Canonical data with no home in the target schema stays visible to
	// reviewers instead of vanishing from the export.
	for key := range report.Fields {
		if schema.ByKey(key) == nil && !report.Fields[key].IsMissing() {
			unmappable = append(unmappable, UnmappableField{
				Key:    key,
				Prompt: "no equivalent field in " + schema.Name + "; requires " + schema.PersonRole + " review",
			})
		}
	}

	for _, b := range report.ResourceEstimates {
		row := ResourceRow{
			Classification: b.Classification,
			DisplayLabel:   schema.ClassificationLabel(b.Classification),
			Tonnage:        b.Tonnage,
			Grade:          b.Grade,
			ContainedMetal: b.ContainedMetal,
		}
		if schema.ID == model.StandardNI43101 && b.ContainedMetal > 0 {
			// NI 43-101 statements conventionally quote contained metal in
			// troy ounces.
			if oz, err := units.Convert(b.ContainedMetal, "g", "oz t"); err == nil {
				row.ContainedOzT = &oz
			}
		}
		view.Resources = append(view.Resources, row)
	}

	for _, p := range report.CompetentPersons {
		p.Role = schema.PersonRole
		view.Persons = append(view.Persons, p)
	}

	zap.L().Debug("convert: report projected",
		zap.String("report", report.ID),
		zap.String("target", string(targetID)),
		zap.Int("fields", len(view.Fields)),
		zap.Int("unmappable", len(unmappable)),
	)
	return &Result{Projected: view, Unmappable: unmappable}, nil
}

// Reproject folds a standard view back into canonical fields, restoring
// canonical units. Together with Convert it satisfies round-trip
// stability for every field present in both schemas.
func Reproject(view *StandardView, reg *registry.Registry) (*model.CanonicalReport, error) {
	schema, ok := reg.Lookup(view.StandardID)
	if !ok {
		return nil, eris.Errorf("convert: unknown source standard %q", view.StandardID)
	}

	report := &model.CanonicalReport{
		Commodity:        model.CommodityUnknown,
		StandardDetected: schema.ID,
		Status:           model.ReportStatusParsed,
		Sections:         view.Sections,
		CompetentPersons: view.Persons,
	}
	for _, pf := range view.Fields {
		v := pf.Value
		if v == nil {
			continue
		}
		// "%" on a percent-typed field is a ratio, not an assay grade; it
		// never canonicalizes to g/t. Unitless values likewise pass through.
		if v.Type == model.FieldTypeNumber && v.Unit != "" && v.Unit != "%" {
			canonical, canonUnit, err := units.ToCanonical(v.Number, v.Unit)
			if err != nil {
				return nil, eris.Wrapf(err, "convert: field %s", pf.Key)
			}
			report.SetField(pf.Key, model.NumberValue(canonical, canonUnit, v.SourceText, v.Confidence))
			continue
		}
		fv := *v
		report.SetField(pf.Key, &fv)
	}
	for _, row := range view.Resources {
		report.ResourceEstimates = append(report.ResourceEstimates, model.ResourceBucket{
			Classification: row.Classification,
			Tonnage:        row.Tonnage,
			Grade:          row.Grade,
			ContainedMetal: row.ContainedMetal,
			Confidence:     model.ConfidenceExact,
		})
	}
	return report, nil
}

// reexpress converts a canonical numeric value into the target unit.
// Non-numeric, unitless, and percent values pass through as copies; a
// unitless value is never relabeled with a unit it was not expressed in.
func reexpress(v *model.FieldValue, targetUnit string) (*model.FieldValue, error) {
	cp := *v
	if v.Type != model.FieldTypeNumber || targetUnit == "" || v.Unit == "" || v.Unit == "%" || v.Unit == targetUnit {
		return &cp, nil
	}
	converted, err := units.Convert(v.Number, v.Unit, targetUnit)
	if err != nil {
		return nil, err
	}
	cp.Number = converted
	cp.Unit = targetUnit
	return &cp, nil
}

// commodity labels in Portuguese for the Brazilian standard.
var commodityPT = map[model.Commodity]string{
	model.CommodityGold:      "ouro",
	model.CommodityCopper:    "cobre",
	model.CommodityIron:      "ferro",
	model.CommodityLithium:   "lítio",
	model.CommodityNickel:    "níquel",
	model.CommodityZinc:      "zinco",
	model.CommoditySilver:    "prata",
	model.CommodityBauxite:   "bauxita",
	model.CommodityPhosphate: "fosfato",
}

// commodityLabel renders the commodity in the target standard's language.
func commodityLabel(c model.Commodity, target model.StandardID) string {
	if target == model.StandardCBRR {
		if pt, ok := commodityPT[c]; ok {
			return pt
		}
	}
	return string(c)
}
