package mapper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// numberRe grabs the first number-looking token, thousands separators and
// sign included.
var numberRe = regexp.MustCompile(`-?\d[\d.,]*`)

// ParseNumber parses a numeric cell tolerant of thousands separators in
// both the anglophone ("1,234,567.8") and Brazilian ("1.234.567,8")
// conventions, plus trailing unit text ("10.5 m").
func ParseNumber(s string) (float64, error) {
	token := numberRe.FindString(strings.TrimSpace(s))
	if token == "" {
		return 0, eris.Errorf("mapper: no numeric value in %q", s)
	}

	lastDot := strings.LastIndexByte(token, '.')
	lastComma := strings.LastIndexByte(token, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Rightmost separator is the decimal point.
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		// A lone comma followed by exactly three digits reads as a
		// thousands separator; anything else is a decimal comma.
		if strings.Count(token, ",") > 1 || len(token)-lastComma-1 == 3 {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.Replace(token, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "mapper: parse number %q", s)
	}
	return v, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"2006",
}

// ParseDate tries the date layouts seen across technical reports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("mapper: unrecognized date %q", s)
}

// headerUnitRe captures a parenthesized unit in a column header, e.g.
// "Depth (m)" or "Au (g/t)".
var headerUnitRe = regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`)

// SplitHeaderUnit separates a column header from its parenthesized unit.
// "Au (g/t)" becomes ("Au", "g/t"); headers without a unit come back
// unchanged with an empty unit.
func SplitHeaderUnit(header string) (label, unit string) {
	if m := headerUnitRe.FindStringSubmatch(header); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(header), ""
}

// normalizeLabel lowercases and collapses whitespace for alias comparison.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
