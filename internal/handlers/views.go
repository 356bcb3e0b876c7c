package handlers

import (
	"time"

	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
)

// Wire shapes for the JSON API. Field payloads match the flat persisted
// schema form the builder client works with.

type fieldVM struct {
	ID          uint                    `json:"id"`
	UID         string                  `json:"uid"`
	Key         string                  `json:"key"`
	Label       string                  `json:"label"`
	Description string                  `json:"description,omitempty"`
	Type        string                  `json:"type"`
	Required    bool                    `json:"required"`
	Value       string                  `json:"value,omitempty"`
	Options     []schema.Option         `json:"options,omitempty"`
	Rules       []schema.VisibilityRule `json:"visibilityRules,omitempty"`
	Validation  schema.FieldValidation  `json:"validation,omitempty"`

	// Cycle is filled for CYCLE_WEEK_INDICATOR fields at render time:
	// the week of the 16-week cycle today falls in, if any.
	Cycle *cycleVM `json:"cycle,omitempty"`
}

type cycleVM struct {
	Week int           `json:"week"` // 1-based for display
	Verb schema.Option `json:"verb"`
}

type reportVM struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Scope       string    `json:"scope"`
	Color       string    `json:"color,omitempty"`
	ShareToken  string    `json:"shareToken,omitempty"`
	Fields      []fieldVM `json:"fields"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type entryVM struct {
	ID          uint              `json:"id"`
	ReportID    uint              `json:"reportId"`
	Scope       string            `json:"scope"`
	CellID      *uint             `json:"cellId,omitempty"`
	GroupID     *uint             `json:"groupId,omitempty"`
	SectorID    *uint             `json:"sectorId,omitempty"`
	Status      string            `json:"status"`
	SubmittedAt *time.Time        `json:"submittedAt,omitempty"`
	Values      map[string]string `json:"values"`
}

func fieldView(f models.ReportField) fieldVM {
	vm := fieldVM{
		ID:          f.ID,
		UID:         f.UID,
		Key:         f.Key,
		Label:       f.Label,
		Description: f.Description,
		Type:        f.Type,
		Required:    f.Required,
		Value:       f.Value,
		Options:     f.Options,
		Rules:       f.VisibilityRules,
		Validation:  f.Validation,
	}
	if f.Type == schema.TypeCycleWeekIndicator && f.Validation.CycleStartDate != "" {
		if start, err := time.Parse("2006-01-02", f.Validation.CycleStartDate); err == nil {
			if week, verb, ok := schema.CycleWeek(start, time.Now(), f.Options); ok {
				vm.Cycle = &cycleVM{Week: week + 1, Verb: verb}
			}
		}
	}
	return vm
}

func reportView(rep *models.Report) reportVM {
	vm := reportVM{
		ID:          rep.ID,
		Title:       rep.Title,
		Description: rep.Description,
		Scope:       rep.Scope,
		Color:       rep.Color,
		Fields:      make([]fieldVM, 0, len(rep.Fields)),
		UpdatedAt:   rep.UpdatedAt,
	}
	if rep.ShareToken != nil {
		vm.ShareToken = *rep.ShareToken
	}
	for _, f := range rep.Fields {
		vm.Fields = append(vm.Fields, fieldView(f))
	}
	return vm
}

func entryView(e *models.ReportEntry) entryVM {
	vm := entryVM{
		ID:          e.ID,
		ReportID:    e.ReportID,
		Scope:       e.Scope,
		CellID:      e.CellID,
		GroupID:     e.GroupID,
		SectorID:    e.SectorID,
		Status:      e.Status,
		SubmittedAt: e.SubmittedAt,
		Values:      make(map[string]string, len(e.Values)),
	}
	for _, v := range e.Values {
		vm.Values[v.FieldKey] = v.Value
	}
	return vm
}
