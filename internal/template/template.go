// Package template renders standard schemas and projected reports at the
// presentation boundary: fillable workbooks generated from the registry and
// export workbooks for a report projected into a target standard.
package template

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/orestack/minereport/internal/convert"
	"github.com/orestack/minereport/internal/model"
)

const (
	fieldsSheet    = "Fields"
	resourcesSheet = "Resource Estimates"
	personsSheet   = "Signing Persons"
)

// Fillable builds an empty XLSX workbook for the given standard: one row per
// schema field with label, unit, and required marker, plus a resource
// estimate grid under the standard's own classification terminology.
func Fillable(schema *model.StandardSchema) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := renameFirstSheet(f, fieldsSheet); err != nil {
		return nil, err
	}

	setRow(f, fieldsSheet, 1, []any{"Field", "Unit", "Required", "Value"})
	row := 2
	for _, def := range schema.Fields {
		required := ""
		if def.Required {
			required = "yes"
		}
		setRow(f, fieldsSheet, row, []any{def.Label, def.Unit, required, ""})
		row++
	}

	if _, err := f.NewSheet(resourcesSheet); err != nil {
		return nil, eris.Wrap(err, "template: add resources sheet")
	}
	setRow(f, resourcesSheet, 1, []any{"Classification", "Tonnage (t)", "Grade (g/t)", "Contained Metal (g)"})
	row = 2
	for _, class := range []model.Classification{
		model.ClassMeasured, model.ClassIndicated, model.ClassInferred,
		model.ClassProved, model.ClassProbable,
	} {
		setRow(f, resourcesSheet, row, []any{schema.ClassificationLabel(class), "", "", ""})
		row++
	}

	if _, err := f.NewSheet(personsSheet); err != nil {
		return nil, eris.Wrap(err, "template: add persons sheet")
	}
	setRow(f, personsSheet, 1, []any{schema.PersonRole, "Affiliation", "Registration ID"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrapf(err, "template: write workbook for %s", schema.ID)
	}
	return buf.Bytes(), nil
}

// FillableCSV is the flat variant of Fillable: one record per schema field.
func FillableCSV(schema *model.StandardSchema) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"field", "label", "unit", "required", "value"}); err != nil {
		return nil, eris.Wrap(err, "template: write csv header")
	}
	for _, def := range schema.Fields {
		rec := []string{def.CanonicalKey, def.Label, def.Unit, strconv.FormatBool(def.Required), ""}
		if err := w.Write(rec); err != nil {
			return nil, eris.Wrapf(err, "template: write csv row %s", def.CanonicalKey)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "template: flush csv")
	}
	return buf.Bytes(), nil
}

// Render turns a converted report into an XLSX workbook under the target
// standard's labels. Unmapped fields get their own sheet with the manual
// completion prompt.
func Render(res *convert.Result) ([]byte, error) {
	view := &res.Projected

	f := excelize.NewFile()
	defer f.Close()

	if err := renameFirstSheet(f, fieldsSheet); err != nil {
		return nil, err
	}

	setRow(f, fieldsSheet, 1, []any{"Field", "Value", "Unit", "Confidence"})
	row := 2
	for _, pf := range view.Fields {
		setRow(f, fieldsSheet, row, []any{pf.Label, cellValue(pf.Value), displayUnit(pf), confidenceCell(pf.Value)})
		row++
	}
	if view.CommodityLabel != "" {
		setRow(f, fieldsSheet, row, []any{"Commodity", view.CommodityLabel, "", ""})
		row++
	}

	if len(view.Resources) > 0 {
		if _, err := f.NewSheet(resourcesSheet); err != nil {
			return nil, eris.Wrap(err, "template: add resources sheet")
		}
		headers := []any{"Classification", "Tonnage (t)", "Grade (g/t)", "Contained Metal (g)"}
		hasOz := false
		for _, r := range view.Resources {
			if r.ContainedOzT != nil {
				hasOz = true
				break
			}
		}
		if hasOz {
			headers = append(headers, "Contained Metal (oz t)")
		}
		setRow(f, resourcesSheet, 1, headers)
		row = 2
		for _, r := range view.Resources {
			cells := []any{r.DisplayLabel, r.Tonnage, r.Grade, r.ContainedMetal}
			if hasOz {
				var oz any
				if r.ContainedOzT != nil {
					oz = *r.ContainedOzT
				}
				cells = append(cells, oz)
			}
			setRow(f, resourcesSheet, row, cells)
			row++
		}
	}

	if len(view.Persons) > 0 {
		if _, err := f.NewSheet(personsSheet); err != nil {
			return nil, eris.Wrap(err, "template: add persons sheet")
		}
		setRow(f, personsSheet, 1, []any{view.PersonRole, "Affiliation", "Registration ID"})
		row = 2
		for _, p := range view.Persons {
			setRow(f, personsSheet, row, []any{p.Name, p.Affiliation, p.RegistrationID})
			row++
		}
	}

	if len(res.Unmappable) > 0 {
		const sheet = "Needs Attention"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, eris.Wrap(err, "template: add attention sheet")
		}
		setRow(f, sheet, 1, []any{"Field", "Prompt"})
		row = 2
		for _, u := range res.Unmappable {
			label := u.Label
			if label == "" {
				label = u.Key
			}
			setRow(f, sheet, row, []any{label, u.Prompt})
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrapf(err, "template: write export for %s", view.StandardID)
	}
	return buf.Bytes(), nil
}

func renameFirstSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return eris.Wrap(err, "template: rename sheet")
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func cellValue(v *model.FieldValue) any {
	if v == nil || v.IsMissing() {
		return ""
	}
	switch v.Type {
	case model.FieldTypeNumber:
		return v.Number
	case model.FieldTypeDate:
		if v.Date != nil {
			return v.Date.Format(time.DateOnly)
		}
		return ""
	default:
		return v.Text
	}
}

func displayUnit(pf convert.ProjectedField) string {
	if pf.Value != nil && pf.Value.Unit != "" {
		return pf.Value.Unit
	}
	return pf.Unit
}

func confidenceCell(v *model.FieldValue) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", v.Confidence)
}
