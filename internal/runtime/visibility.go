// Package runtime evaluates a report schema against live form values:
// visibility rules, per-type required validation and the parsing of
// structured field payloads.
package runtime

import (
	"strconv"
	"strings"

	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
)

// Visible reports whether the field should be rendered given the
// current values (by field key). All rules must pass; a rule against a
// missing field compares the empty string. equals/notEquals/contains
// compare stringified values, gt/lt compare numeric coercions and fail
// when either side is not a number.
func Visible(f models.ReportField, values map[string]string) bool {
	for _, r := range f.VisibilityRules {
		if !ruleHolds(r, values[r.FieldKey]) {
			return false
		}
	}
	return true
}

func ruleHolds(r schema.VisibilityRule, current string) bool {
	switch r.Operator {
	case schema.OpEquals:
		return current == r.Value
	case schema.OpNotEquals:
		return current != r.Value
	case schema.OpContains:
		return strings.Contains(current, r.Value)
	case schema.OpGt, schema.OpLt:
		a, errA := strconv.ParseFloat(strings.TrimSpace(current), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
		if errA != nil || errB != nil {
			return false
		}
		if r.Operator == schema.OpGt {
			return a > b
		}
		return a < b
	}
	// Unknown operators hide the field rather than leak it.
	return false
}

// VisibleFields filters fields to those whose rules pass. Rules look up
// referenced fields across the whole schema, not just siblings.
func VisibleFields(fields []models.ReportField, values map[string]string) []models.ReportField {
	out := make([]models.ReportField, 0, len(fields))
	for _, f := range fields {
		if Visible(f, values) {
			out = append(out, f)
		}
	}
	return out
}
