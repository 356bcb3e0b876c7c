package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/events"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/runtime"
	"github.com/ccvida/reportes/internal/schema"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

var (
	// ErrEntryFinal rejects any write against a submitted entry.
	// Finality is enforced here, not just hidden in the UI.
	ErrEntryFinal      = errors.New("entry already submitted")
	ErrMissingEntity   = errors.New("scoped entity is required")
	ErrScopeMismatch   = errors.New("entity does not match report scope")
	ErrEntryMismatched = errors.New("entry does not belong to this report")
)

// EntryInput is a draft save or a final submission. ID 0 means "find my
// draft or create one"; repeated draft saves land on the same row.
type EntryInput struct {
	ID       uint              `json:"id,omitempty"`
	ReportID uint              `json:"reportId"`
	CellID   *uint             `json:"cellId,omitempty"`
	GroupID  *uint             `json:"groupId,omitempty"`
	SectorID *uint             `json:"sectorId,omitempty"`
	Values   map[string]string `json:"values"` // by field key
	Draft    bool              `json:"draft"`
}

// SaveEntry upserts a draft or writes a final entry.
//
// Drafts skip validation and keep every value, visible or not, so a
// toggled controlling field never loses in-progress answers. A final
// submit validates visible required fields, scrubs values hidden by
// visibility rules at submit time, creates Friend rows from
// FRIEND_REGISTRATION payloads and stamps SubmittedAt.
func SaveEntry(in EntryInput) (*models.ReportEntry, error) {
	rep, err := GetReport(in.ReportID)
	if err != nil {
		return nil, err
	}
	entityID, err := scopedEntity(rep.Scope, in)
	if err != nil {
		return nil, err
	}

	if !in.Draft {
		if err := runtime.ValidateSubmission(rep.Fields, in.Values); err != nil {
			return nil, err
		}
	}

	fieldByKey := make(map[string]models.ReportField, len(rep.Fields))
	for _, f := range rep.Fields {
		if f.Key != "" {
			fieldByKey[f.Key] = f
		}
	}

	var entry models.ReportEntry
	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		switch {
		case in.ID != 0:
			if err := tx.First(&entry, in.ID).Error; err != nil {
				return err
			}
			if entry.ReportID != rep.ID {
				return ErrEntryMismatched
			}
			// The entry must belong to the caller's own scope entity;
			// cell A never touches cell B's draft through a leaked id.
			if !entityMatches(entry, rep.Scope, entityID) {
				return ErrScopeMismatch
			}
			if entry.Status == StatusSubmitted {
				return ErrEntryFinal
			}
		default:
			// Reuse an existing draft for this report+entity rather
			// than piling up rows.
			q := tx.Where("report_id = ? AND status = ?", rep.ID, StatusDraft)
			q = scopeQuery(q, rep.Scope, entityID)
			if err := q.First(&entry).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				entry = models.ReportEntry{ReportID: rep.ID, Scope: rep.Scope}
			}
		}

		entry.Scope = rep.Scope
		entry.CellID, entry.GroupID, entry.SectorID = nil, nil, nil
		switch rep.Scope {
		case schema.ScopeCell:
			entry.CellID = entityID
		case schema.ScopeGroup:
			entry.GroupID = entityID
		case schema.ScopeSector:
			entry.SectorID = entityID
		}
		entry.Status = StatusDraft
		if !in.Draft {
			now := time.Now()
			entry.Status = StatusSubmitted
			entry.SubmittedAt = &now
		}
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		if err := tx.Where("entry_id = ?", entry.ID).
			Delete(&models.ReportEntryValue{}).Error; err != nil {
			return err
		}
		for key, raw := range in.Values {
			f, ok := fieldByKey[key]
			if !ok {
				continue // stale key from an older schema revision
			}
			if !in.Draft && !runtime.Visible(f, in.Values) {
				continue // scrubbed: hidden at submit time
			}
			v := models.ReportEntryValue{
				EntryID:  entry.ID,
				FieldID:  f.ID,
				FieldKey: key,
				Value:    raw,
			}
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
			entry.Values = append(entry.Values, v)
		}

		if !in.Draft {
			if err := registerFriends(tx, rep.Fields, in.Values, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry.Status == StatusSubmitted && events.OnEntrySubmitted != nil {
		events.OnEntrySubmitted(entry)
	}
	return &entry, nil
}

// GetDraft finds the open draft for a report and scope entity, or nil.
func GetDraft(reportID uint, scope string, entityID *uint) (*models.ReportEntry, error) {
	q := db.Conn().Preload("Values").
		Where("report_id = ? AND status = ?", reportID, StatusDraft)
	q = scopeQuery(q, scope, entityID)

	var entry models.ReportEntry
	if err := q.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns a report's entries, newest first.
func ListEntries(reportID uint) ([]models.ReportEntry, error) {
	var entries []models.ReportEntry
	err := db.Conn().Preload("Values").
		Where("report_id = ?", reportID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	return entries, err
}

// GetEntry loads one entry row, values included.
func GetEntry(id uint) (*models.ReportEntry, error) {
	var entry models.ReportEntry
	if err := db.Conn().Preload("Values").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry and its values.
func DeleteEntry(id uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var entry models.ReportEntry
		if err := tx.First(&entry, id).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).
			Delete(&models.ReportEntryValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entry).Error
	})
}

func scopedEntity(scope string, in EntryInput) (*uint, error) {
	var id *uint
	switch scope {
	case schema.ScopeCell:
		id = in.CellID
	case schema.ScopeGroup:
		id = in.GroupID
	case schema.ScopeSector:
		id = in.SectorID
	case schema.ScopeChurch:
		return nil, nil
	}
	if id == nil || *id == 0 {
		return nil, ErrMissingEntity
	}
	return id, nil
}

func entityMatches(e models.ReportEntry, scope string, entityID *uint) bool {
	var cur *uint
	switch scope {
	case schema.ScopeCell:
		cur = e.CellID
	case schema.ScopeGroup:
		cur = e.GroupID
	case schema.ScopeSector:
		cur = e.SectorID
	default:
		return true
	}
	if cur == nil || entityID == nil {
		return cur == nil && entityID == nil
	}
	return *cur == *entityID
}

func scopeQuery(q *gorm.DB, scope string, entityID *uint) *gorm.DB {
	switch scope {
	case schema.ScopeCell:
		return q.Where("cell_id = ?", entityID)
	case schema.ScopeGroup:
		return q.Where("group_id = ?", entityID)
	case schema.ScopeSector:
		return q.Where("sector_id = ?", entityID)
	}
	return q
}

// registerFriends creates Friend rows for every FRIEND_REGISTRATION
// value of a final submission. Only cell-scoped entries know which cell
// the friends belong to; other scopes keep the payload as data only.
func registerFriends(tx *gorm.DB, fields []models.ReportField, values map[string]string, entry models.ReportEntry) error {
	if entry.CellID == nil {
		return nil
	}
	for _, f := range fields {
		if f.Type != schema.TypeFriendRegistration {
			continue
		}
		if !runtime.Visible(f, values) {
			continue
		}
		list, err := runtime.ParseFriendList(values[f.Key])
		if err != nil {
			return err
		}
		for _, fr := range list {
			friend := models.Friend{
				Name:           fr.Name,
				Phone:          fr.Phone,
				CellID:         *entry.CellID,
				RegisteredByID: fr.RegisteredByID,
			}
			if err := tx.Create(&friend).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
