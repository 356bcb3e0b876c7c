package models

import (
	"time"

	"github.com/ccvida/reportes/internal/schema"
)

type Report struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title       string `gorm:"not null"`
	Description string
	Scope       string `gorm:"not null;default:CELL"` // CELL | GROUP | SECTOR | CHURCH
	Color       string

	// ShareToken enables the public (unauthenticated) fill flow.
	// Nil while the report is internal-only.
	ShareToken *string `gorm:"uniqueIndex"`

	// BuilderState holds the serialized builder panel state
	// (builder.UIState). Opaque to the database.
	BuilderState string

	Fields []ReportField
}

type ReportField struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ReportID uint   `gorm:"index;not null"`
	UID      string `gorm:"uniqueIndex;not null"` // opaque identity, assigned at creation

	Key         string
	Label       string
	Description string
	Type        string `gorm:"not null"`
	Required    bool
	Position    int

	// Value is the type-dependent payload. For SECTION fields the
	// sentinel schema.SectionBreak marks a group terminator.
	Value string

	Options         []schema.Option         `gorm:"serializer:json"`
	VisibilityRules []schema.VisibilityRule `gorm:"serializer:json"`
	Validation      schema.FieldValidation  `gorm:"serializer:json"`
}

// Status: "draft" until the filler confirms, then "submitted".
// Submitted entries are immutable; the write path rejects updates.
type ReportEntry struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ReportID uint   `gorm:"index;not null"`
	Scope    string `gorm:"not null"`

	// Exactly one of these is set, matching Scope. All nil for CHURCH.
	CellID   *uint
	GroupID  *uint
	SectorID *uint

	Status      string // draft | submitted
	SubmittedAt *time.Time

	Values []ReportEntryValue `gorm:"foreignKey:EntryID"`
}

type ReportEntryValue struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EntryID  uint `gorm:"index;not null"`
	FieldID  uint
	FieldKey string
	Value    string
}

func (ReportEntry) TableName() string      { return "report_entries" }
func (ReportEntryValue) TableName() string { return "report_entry_values" }
