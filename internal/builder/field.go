// Package builder maintains an editable report schema as a tree of
// groups (lone fields and sections with children) and converts it to
// and from the flat SECTION/SECTION_BREAK sentinel array used at the
// persistence boundary.
package builder

import (
	"github.com/google/uuid"

	"github.com/ccvida/reportes/internal/schema"
)

// Field is one question (or section header) while it is being edited.
// UID is the single opaque identity assigned at creation and kept for
// the field's whole life; ID/Persisted track the database row once the
// report has been saved.
type Field struct {
	UID       string `json:"uid"`
	ID        uint   `json:"id,omitempty"`
	Persisted bool   `json:"persisted"`

	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Value       string `json:"value,omitempty"`

	Options    []schema.Option         `json:"options,omitempty"`
	Rules      []schema.VisibilityRule `json:"visibilityRules,omitempty"`
	Validation schema.FieldValidation  `json:"validation,omitempty"`
}

const sectionType = schema.TypeSection

// NewField returns a fresh unpersisted field with a generated identity.
func NewField(typ string) *Field {
	return &Field{UID: uuid.NewString(), Type: typ}
}

func newBreak() *Field {
	f := NewField(schema.TypeSection)
	f.Value = schema.SectionBreak
	return f
}

// IsBreak reports whether the field is a section terminator sentinel.
func (f *Field) IsBreak() bool {
	return f.Type == schema.TypeSection && f.Value == schema.SectionBreak
}

// Clone copies the field under a new identity. The copy is never
// persisted, regardless of the original.
func (f *Field) Clone() *Field {
	c := *f
	c.UID = uuid.NewString()
	c.ID = 0
	c.Persisted = false
	c.Options = append([]schema.Option(nil), f.Options...)
	c.Rules = append([]schema.VisibilityRule(nil), f.Rules...)
	return &c
}
