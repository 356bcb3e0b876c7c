package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/builder"
	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
)

var (
	ErrMissingTitle = errors.New("report title is required")
	ErrInvalidScope = errors.New("invalid report scope")
	ErrInvalidType  = errors.New("invalid field type")
	ErrDuplicateKey = errors.New("duplicate field key")
	ErrUnknownField = errors.New("field id does not belong to this report")
)

// FieldInput is one field as sent by the builder client: the flat
// persisted shape, section breaks included.
type FieldInput struct {
	ID          uint                    `json:"id,omitempty"`
	UID         string                  `json:"uid,omitempty"`
	Key         string                  `json:"key,omitempty"`
	Label       string                  `json:"label"`
	Description string                  `json:"description,omitempty"`
	Type        string                  `json:"type"`
	Required    bool                    `json:"required"`
	Value       string                  `json:"value,omitempty"`
	Options     []schema.Option         `json:"options,omitempty"`
	Rules       []schema.VisibilityRule `json:"visibilityRules,omitempty"`
	Validation  schema.FieldValidation  `json:"validation,omitempty"`
}

type ReportInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Scope       string       `json:"scope"`
	Color       string       `json:"color,omitempty"`
	Fields      []FieldInput `json:"fields"`
}

// FieldPatch is a tagged update for one persisted field: nil means
// "leave unchanged". Keys of persisted fields are never patched; a
// changed key would silently orphan collected values.
type FieldPatch struct {
	Label       *string
	Description *string
	Required    *bool
	Position    *int
	Value       *string
	Options     *[]schema.Option
	Rules       *[]schema.VisibilityRule
	Validation  *schema.FieldValidation
}

func (p FieldPatch) Apply(f *models.ReportField) {
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Position != nil {
		f.Position = *p.Position
	}
	if p.Value != nil {
		f.Value = *p.Value
	}
	if p.Options != nil {
		f.Options = *p.Options
	}
	if p.Rules != nil {
		f.VisibilityRules = *p.Rules
	}
	if p.Validation != nil {
		f.Validation = *p.Validation
	}
}

// normalizeFields parses the incoming flat list into a builder
// document, derives keys for new fields and enforces key uniqueness.
func normalizeFields(inputs []FieldInput) (*builder.Document, error) {
	flat := make([]*builder.Field, 0, len(inputs))
	for _, in := range inputs {
		if !schema.ValidType(in.Type) {
			return nil, ErrInvalidType
		}
		f := builder.NewField(in.Type)
		if in.UID != "" {
			f.UID = in.UID
		}
		f.ID = in.ID
		f.Persisted = in.ID != 0
		f.Key = in.Key
		f.Label = in.Label
		f.Description = in.Description
		f.Required = in.Required
		f.Value = in.Value
		f.Options = in.Options
		f.Rules = in.Rules
		f.Validation = in.Validation
		flat = append(flat, f)
	}

	doc := builder.ParseFields(flat)
	doc.EnsureKeys()

	seen := make(map[string]bool)
	for _, f := range doc.Fields() {
		if f.Key == "" {
			continue
		}
		if seen[f.Key] {
			return nil, ErrDuplicateKey
		}
		seen[f.Key] = true
	}
	return doc, nil
}

func validateReportInput(in ReportInput) error {
	if in.Title == "" {
		return ErrMissingTitle
	}
	if !schema.ValidScope(in.Scope) {
		return ErrInvalidScope
	}
	return nil
}

// CreateReport persists a new report with its field list.
func CreateReport(in ReportInput) (*models.Report, error) {
	if err := validateReportInput(in); err != nil {
		return nil, err
	}
	doc, err := normalizeFields(in.Fields)
	if err != nil {
		return nil, err
	}

	rep := models.Report{
		Title:       in.Title,
		Description: in.Description,
		Scope:       in.Scope,
		Color:       in.Color,
	}
	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rep).Error; err != nil {
			return err
		}
		for pos, f := range doc.Flatten() {
			row := fieldRow(rep.ID, f, pos)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetReport(rep.ID)
}

// UpdateReportWithFields applies a full builder save: metadata updated,
// fields with a known id patched, new fields inserted, and persisted
// fields missing from the input deleted (their panel state pruned too).
func UpdateReportWithFields(id uint, in ReportInput) (*models.Report, error) {
	if err := validateReportInput(in); err != nil {
		return nil, err
	}
	doc, err := normalizeFields(in.Fields)
	if err != nil {
		return nil, err
	}

	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		var rep models.Report
		if err := tx.First(&rep, id).Error; err != nil {
			return err
		}

		var existing []models.ReportField
		if err := tx.Where("report_id = ?", id).Find(&existing).Error; err != nil {
			return err
		}
		byID := make(map[uint]*models.ReportField, len(existing))
		for i := range existing {
			byID[existing[i].ID] = &existing[i]
		}

		kept := make(map[uint]bool)
		for pos, f := range doc.Flatten() {
			if f.ID != 0 {
				old, ok := byID[f.ID]
				if !ok {
					return ErrUnknownField
				}
				kept[f.ID] = true
				p := diffField(old, f, pos)
				p.Apply(old)
				if err := tx.Save(old).Error; err != nil {
					return err
				}
				continue
			}
			row := fieldRow(id, f, pos)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for _, old := range existing {
			if !kept[old.ID] {
				if err := tx.Delete(&models.ReportField{}, old.ID).Error; err != nil {
					return err
				}
			}
		}

		state := builder.DecodeUIState(rep.BuilderState)
		state.Prune(doc)

		rep.Title = in.Title
		rep.Description = in.Description
		rep.Scope = in.Scope
		rep.Color = in.Color
		rep.BuilderState = state.Encode()
		return tx.Save(&rep).Error
	})
	if err != nil {
		return nil, err
	}
	return GetReport(id)
}

// DeleteReport removes the report with its fields, entries and values.
func DeleteReport(id uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var rep models.Report
		if err := tx.First(&rep, id).Error; err != nil {
			return err
		}
		var entryIDs []uint
		if err := tx.Model(&models.ReportEntry{}).Where("report_id = ?", id).
			Pluck("id", &entryIDs).Error; err != nil {
			return err
		}
		if len(entryIDs) > 0 {
			if err := tx.Where("entry_id IN ?", entryIDs).
				Delete(&models.ReportEntryValue{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportField{}).Error; err != nil {
			return err
		}
		return tx.Delete(&rep).Error
	})
}

// GetReport loads a report with its fields in position order.
func GetReport(id uint) (*models.Report, error) {
	var rep models.Report
	err := db.Conn().Preload("Fields", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc, id asc")
	}).First(&rep, id).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func fieldRow(reportID uint, f *builder.Field, pos int) models.ReportField {
	return models.ReportField{
		ReportID:        reportID,
		UID:             f.UID,
		Key:             f.Key,
		Label:           f.Label,
		Description:     f.Description,
		Type:            f.Type,
		Required:        f.Required,
		Position:        pos,
		Value:           f.Value,
		Options:         f.Options,
		VisibilityRules: f.Rules,
		Validation:      f.Validation,
	}
}

func diffField(old *models.ReportField, f *builder.Field, pos int) FieldPatch {
	var p FieldPatch
	if old.Label != f.Label {
		p.Label = &f.Label
	}
	if old.Description != f.Description {
		p.Description = &f.Description
	}
	if old.Required != f.Required {
		p.Required = &f.Required
	}
	if old.Position != pos {
		p.Position = &pos
	}
	if old.Value != f.Value {
		p.Value = &f.Value
	}
	if !sameOptions(old.Options, f.Options) {
		p.Options = &f.Options
	}
	if !sameRules(old.VisibilityRules, f.Rules) {
		p.Rules = &f.Rules
	}
	if old.Validation != f.Validation {
		p.Validation = &f.Validation
	}
	return p
}

func sameOptions(a, b []schema.Option) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameRules(a, b []schema.VisibilityRule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
