package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
)

// initTestDB points the package-level connection at an isolated
// database in a temp directory.
func initTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	if err := db.Init(); err != nil {
		t.Fatalf("db init: %v", err)
	}
}

func seedCell(t *testing.T, code string) models.Cell {
	t.Helper()
	sector := models.Sector{Name: "Sector Norte"}
	if err := db.Conn().Create(&sector).Error; err != nil {
		t.Fatalf("create sector: %v", err)
	}
	cell := models.Cell{Name: "Célula Betania", AccessCode: code, SectorID: sector.ID}
	if err := db.Conn().Create(&cell).Error; err != nil {
		t.Fatalf("create cell: %v", err)
	}
	leader := models.Member{Name: "Marta", CellID: cell.ID}
	if err := db.Conn().Create(&leader).Error; err != nil {
		t.Fatalf("create leader: %v", err)
	}
	cell.LeaderID = &leader.ID
	if err := db.Conn().Save(&cell).Error; err != nil {
		t.Fatalf("save cell: %v", err)
	}
	return cell
}

func weeklyReportInput() ReportInput {
	return ReportInput{
		Title: "Reporte Semanal",
		Scope: schema.ScopeCell,
		Color: "#3b82f6",
		Fields: []FieldInput{
			{Label: "Nombre", Type: schema.TypeText, Required: true},
			{Label: "Datos", Type: schema.TypeSection},
			{Label: "Edad", Type: schema.TypeNumber},
			{Type: schema.TypeSection, Value: schema.SectionBreak},
		},
	}
}

func TestCreateReportPersistsFields(t *testing.T) {
	initTestDB(t)

	rep, err := CreateReport(weeklyReportInput())
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if len(rep.Fields) != 4 {
		t.Fatalf("expected 4 fields (break included), got %d", len(rep.Fields))
	}
	for i, f := range rep.Fields {
		if f.Position != i {
			t.Errorf("field %d: position %d", i, f.Position)
		}
		if f.UID == "" {
			t.Errorf("field %d: missing uid", i)
		}
	}
	if rep.Fields[0].Key != "nombre" {
		t.Errorf("slug key: want nombre, got %q", rep.Fields[0].Key)
	}
	if rep.Fields[2].Key != "edad" {
		t.Errorf("slug key: want edad, got %q", rep.Fields[2].Key)
	}
}

func TestCreateReportValidation(t *testing.T) {
	initTestDB(t)

	_, err := CreateReport(ReportInput{Scope: schema.ScopeCell})
	if !errors.Is(err, ErrMissingTitle) {
		t.Errorf("want ErrMissingTitle, got %v", err)
	}
	_, err = CreateReport(ReportInput{Title: "X", Scope: "PLANETA"})
	if !errors.Is(err, ErrInvalidScope) {
		t.Errorf("want ErrInvalidScope, got %v", err)
	}
	_, err = CreateReport(ReportInput{Title: "X", Scope: schema.ScopeChurch,
		Fields: []FieldInput{{Label: "A", Type: "WIDGET"}}})
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("want ErrInvalidType, got %v", err)
	}
	_, err = CreateReport(ReportInput{Title: "X", Scope: schema.ScopeChurch,
		Fields: []FieldInput{
			{Label: "A", Key: "k", Type: schema.TypeText},
			{Label: "B", Key: "k", Type: schema.TypeText},
		}})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("want ErrDuplicateKey, got %v", err)
	}
}

// Update is a diff: fields with an id are patched, new ones inserted,
// persisted ones absent from the input deleted.
func TestUpdateReportWithFieldsDiff(t *testing.T) {
	initTestDB(t)

	rep, err := CreateReport(weeklyReportInput())
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	nombre := rep.Fields[0]
	edad := rep.Fields[2]

	in := ReportInput{
		Title: "Reporte Semanal v2",
		Scope: schema.ScopeCell,
		Fields: []FieldInput{
			// kept, label changed
			{ID: nombre.ID, UID: nombre.UID, Key: nombre.Key, Label: "Nombre Completo",
				Type: schema.TypeText, Required: true},
			// brand new
			{Label: "Ofrenda", Type: schema.TypeCurrency},
			// "Datos" section, "Edad" and the break are dropped
		},
	}
	got, err := UpdateReportWithFields(rep.ID, in)
	if err != nil {
		t.Fatalf("UpdateReportWithFields: %v", err)
	}
	if got.Title != "Reporte Semanal v2" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got.Fields))
	}
	if got.Fields[0].ID != nombre.ID {
		t.Errorf("kept field must keep its row id: want %d, got %d", nombre.ID, got.Fields[0].ID)
	}
	if got.Fields[0].Label != "Nombre Completo" {
		t.Errorf("label not patched: %q", got.Fields[0].Label)
	}
	if got.Fields[1].Key != "ofrenda" {
		t.Errorf("new field key: %q", got.Fields[1].Key)
	}

	var gone models.ReportField
	if err := db.Conn().First(&gone, edad.ID).Error; err == nil {
		t.Errorf("dropped field %d still present", edad.ID)
	}
}

// A persisted field's key is locked: values already collected under it
// must keep resolving.
func TestUpdateReportKeepsPersistedKey(t *testing.T) {
	initTestDB(t)

	rep, err := CreateReport(ReportInput{Title: "R", Scope: schema.ScopeChurch,
		Fields: []FieldInput{{Label: "Asistencia", Type: schema.TypeNumber}}})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	f := rep.Fields[0]

	got, err := UpdateReportWithFields(rep.ID, ReportInput{Title: "R", Scope: schema.ScopeChurch,
		Fields: []FieldInput{{ID: f.ID, UID: f.UID, Key: "otra_clave", Label: "Asistencia Total",
			Type: schema.TypeNumber}}})
	if err != nil {
		t.Fatalf("UpdateReportWithFields: %v", err)
	}
	if got.Fields[0].Key != "asistencia" {
		t.Errorf("persisted key must stay locked: got %q", got.Fields[0].Key)
	}
	if got.Fields[0].Label != "Asistencia Total" {
		t.Errorf("label should still update: got %q", got.Fields[0].Label)
	}
}

func TestUpdateReportRejectsForeignFieldID(t *testing.T) {
	initTestDB(t)

	rep, err := CreateReport(ReportInput{Title: "R", Scope: schema.ScopeChurch})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	_, err = UpdateReportWithFields(rep.ID, ReportInput{Title: "R", Scope: schema.ScopeChurch,
		Fields: []FieldInput{{ID: 9999, Label: "X", Type: schema.TypeText}}})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("want ErrUnknownField, got %v", err)
	}
}

func TestDeleteReportCascades(t *testing.T) {
	initTestDB(t)
	cell := seedCell(t, "BET-001")

	rep, err := CreateReport(ReportInput{Title: "R", Scope: schema.ScopeCell,
		Fields: []FieldInput{{Label: "Nota", Type: schema.TypeText}}})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if _, err := SaveEntry(EntryInput{ReportID: rep.ID, CellID: &cell.ID,
		Values: map[string]string{"nota": "hola"}, Draft: true}); err != nil {
		t.Fatalf("SaveEntry: %v", err)
	}

	if err := DeleteReport(rep.ID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}

	var fields, entries, values int64
	db.Conn().Model(&models.ReportField{}).Where("report_id = ?", rep.ID).Count(&fields)
	db.Conn().Model(&models.ReportEntry{}).Where("report_id = ?", rep.ID).Count(&entries)
	db.Conn().Model(&models.ReportEntryValue{}).Count(&values)
	if fields != 0 || entries != 0 || values != 0 {
		t.Errorf("cascade failed: fields=%d entries=%d values=%d", fields, entries, values)
	}
}

func TestSharingLifecycle(t *testing.T) {
	initTestDB(t)

	rep, err := CreateReport(ReportInput{Title: "R", Scope: schema.ScopeChurch})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	token, err := EnableSharing(rep.ID)
	if err != nil {
		t.Fatalf("EnableSharing: %v", err)
	}
	if token == "" {
		t.Fatal("empty share token")
	}
	// Idempotent: a second call returns the same token.
	again, err := EnableSharing(rep.ID)
	if err != nil {
		t.Fatalf("EnableSharing twice: %v", err)
	}
	if again != token {
		t.Errorf("token changed on re-share: %q vs %q", token, again)
	}

	if _, err := ReportByToken(token); err != nil {
		t.Fatalf("ReportByToken: %v", err)
	}

	if err := DisableSharing(rep.ID); err != nil {
		t.Fatalf("DisableSharing: %v", err)
	}
	if _, err := ReportByToken(token); !errors.Is(err, ErrNotShared) {
		t.Errorf("revoked token should not resolve, got %v", err)
	}
}

func TestVerifyCellAccess(t *testing.T) {
	initTestDB(t)
	cell := seedCell(t, "BET-001")

	access, err := VerifyCellAccess("BET-001")
	if err != nil {
		t.Fatalf("VerifyCellAccess: %v", err)
	}
	if access.CellID != cell.ID || access.CellName != "Célula Betania" {
		t.Errorf("wrong cell: %+v", access)
	}
	if access.LeaderName != "Marta" || access.SectorName != "Sector Norte" {
		t.Errorf("missing leader/sector info: %+v", access)
	}

	if _, err := VerifyCellAccess("WRONG"); !errors.Is(err, ErrBadAccessCode) {
		t.Errorf("want ErrBadAccessCode, got %v", err)
	}
	if _, err := VerifyCellAccess("  "); !errors.Is(err, ErrBadAccessCode) {
		t.Errorf("blank code: want ErrBadAccessCode, got %v", err)
	}
}
