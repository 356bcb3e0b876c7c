// Package schema defines the data contract for dynamic report forms:
// field types, select options, visibility rules and the fixed 16-week
// cycle verb list.
package schema

// Field types. SECTION is not a question: it opens a group of fields,
// and a SECTION whose Value is SectionBreak closes the open group.
const (
	TypeText               = "TEXT"
	TypeNumber             = "NUMBER"
	TypeCurrency           = "CURRENCY"
	TypeBoolean            = "BOOLEAN"
	TypeDate               = "DATE"
	TypeSelect             = "SELECT"
	TypeSection            = "SECTION"
	TypeMemberSelect       = "MEMBER_SELECT"
	TypeFriendRegistration = "FRIEND_REGISTRATION"
	TypeCycleWeekIndicator = "CYCLE_WEEK_INDICATOR"
)

// SectionBreak is the sentinel Value that marks a SECTION field as a
// group terminator in the flat persisted field list.
const SectionBreak = "SECTION_BREAK"

var fieldTypes = map[string]bool{
	TypeText:               true,
	TypeNumber:             true,
	TypeCurrency:           true,
	TypeBoolean:            true,
	TypeDate:               true,
	TypeSelect:             true,
	TypeSection:            true,
	TypeMemberSelect:       true,
	TypeFriendRegistration: true,
	TypeCycleWeekIndicator: true,
}

func ValidType(t string) bool { return fieldTypes[t] }

// Report scopes: which kind of entity an entry is filed against.
const (
	ScopeCell   = "CELL"
	ScopeGroup  = "GROUP"
	ScopeSector = "SECTOR"
	ScopeChurch = "CHURCH"
)

func ValidScope(s string) bool {
	switch s {
	case ScopeCell, ScopeGroup, ScopeSector, ScopeChurch:
		return true
	}
	return false
}

// Option is one selectable choice of a SELECT field, and one verb of
// the cycle list for CYCLE_WEEK_INDICATOR.
type Option struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Visibility operators.
const (
	OpEquals    = "equals"
	OpNotEquals = "notEquals"
	OpContains  = "contains"
	OpGt        = "gt"
	OpLt        = "lt"
)

// VisibilityRule gates a field on the current value of another field,
// referenced by key. A field is visible only if all its rules pass.
type VisibilityRule struct {
	FieldKey string `json:"fieldKey"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// FieldValidation is the per-field configuration bag.
type FieldValidation struct {
	// PublicEditPermission lets a public filler override an otherwise
	// read-only CYCLE_WEEK_INDICATOR value.
	PublicEditPermission bool `json:"publicEditPermission,omitempty"`
	// CycleStartDate (YYYY-MM-DD) anchors the 16-week cycle.
	CycleStartDate string `json:"cycleStartDate,omitempty"`
}
