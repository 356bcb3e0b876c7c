package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
	"github.com/ccvida/reportes/internal/services"
)

func setupRouter(t *testing.T) (http.Handler, string, models.Cell) {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	if err := db.Init(); err != nil {
		t.Fatalf("db init: %v", err)
	}

	sector := models.Sector{Name: "Sector Norte"}
	db.Conn().Create(&sector)
	cell := models.Cell{Name: "Célula Betania", AccessCode: "BET-001", SectorID: sector.ID}
	db.Conn().Create(&cell)
	db.Conn().Create(&models.Member{Name: "Marta", CellID: cell.ID})

	rep, err := services.CreateReport(services.ReportInput{
		Title: "Reporte Semanal",
		Scope: schema.ScopeCell,
		Fields: []services.FieldInput{
			{Label: "Campo A", Type: schema.TypeText},
		},
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	token, err := services.EnableSharing(rep.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	return Router(), token, cell
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookies []*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestRouterHealthz(t *testing.T) {
	r, _, _ := setupRouter(t)
	rec, _ := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminAPIRequiresLogin(t *testing.T) {
	r, _, _ := setupRouter(t)

	rec, _ := doJSON(t, r, http.MethodGet, "/api/reports", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated: want 401, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/admin/login", map[string]string{"password": "admin123"}, nil)
	if rec.Code != 200 {
		t.Fatalf("login: want 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()

	rec, _ = doJSON(t, r, http.MethodGet, "/api/reports", nil, cookies)
	if rec.Code != 200 {
		t.Fatalf("authenticated list: want 200, got %d", rec.Code)
	}
}

// Wrong access code: the form stays gated, only the access step is
// reachable and no draft is looked up.
func TestPublicCellReportStaysGated(t *testing.T) {
	r, token, _ := setupRouter(t)

	rec, body := doJSON(t, r, http.MethodGet, "/p/"+token+"/", nil, nil)
	if rec.Code != 200 {
		t.Fatalf("show: want 200, got %d", rec.Code)
	}
	if body["gated"] != true {
		t.Errorf("expected gated view, got %v", body)
	}
	if _, ok := body["fields"]; ok {
		t.Errorf("gated view must not leak fields: %v", body)
	}

	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/access", map[string]string{"code": "WRONG"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong code: want 401, got %d", rec.Code)
	}
	if body["error"] != "codigo_invalido" {
		t.Errorf("error code: %v", body)
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/p/"+token+"/draft", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("draft without gate: want 401, got %d", rec.Code)
	}
}

// Valid code unlocks the form; a draft saved, edited and saved again
// keeps its entry id and returns the newest values.
func TestPublicDraftFlow(t *testing.T) {
	r, token, _ := setupRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/p/"+token+"/access", map[string]string{"code": "BET-001"}, nil)
	if rec.Code != 200 {
		t.Fatalf("access: want 200, got %d (%v)", rec.Code, body)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no access cookie set")
	}

	rec, body = doJSON(t, r, http.MethodGet, "/p/"+token+"/", nil, cookies)
	if rec.Code != 200 || body["gated"] == true {
		t.Fatalf("unlocked view: code=%d body=%v", rec.Code, body)
	}
	if _, ok := body["fields"]; !ok {
		t.Fatalf("fields missing after unlock: %v", body)
	}

	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"values": map[string]string{"campo_a": "x"}, "draft": true}, cookies)
	if rec.Code != 200 {
		t.Fatalf("save draft: want 200, got %d (%v)", rec.Code, body)
	}
	entry := body["entry"].(map[string]any)
	firstID := entry["id"].(float64)

	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"values": map[string]string{"campo_a": "y"}, "draft": true}, cookies)
	if rec.Code != 200 {
		t.Fatalf("second draft: want 200, got %d", rec.Code)
	}
	if id := body["entry"].(map[string]any)["id"].(float64); id != firstID {
		t.Fatalf("draft id changed: %v -> %v", firstID, id)
	}

	rec, body = doJSON(t, r, http.MethodGet, "/p/"+token+"/draft", nil, cookies)
	if rec.Code != 200 {
		t.Fatalf("fetch draft: want 200, got %d", rec.Code)
	}
	entry = body["entry"].(map[string]any)
	if entry["id"].(float64) != firstID {
		t.Errorf("fetched draft id: %v", entry["id"])
	}
	values := entry["values"].(map[string]any)
	if values["campo_a"] != "y" {
		t.Errorf("draft values: %v", values)
	}
}

// A confirmed submit finalizes the entry, drops the access gate, and
// the old draft id can never be written again.
func TestPublicSubmitResetsSession(t *testing.T) {
	r, token, _ := setupRouter(t)

	rec, _ := doJSON(t, r, http.MethodPost, "/p/"+token+"/access", map[string]string{"code": "BET-001"}, nil)
	cookies := rec.Result().Cookies()

	rec, body := doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"values": map[string]string{"campo_a": "x"}, "draft": true}, cookies)
	if rec.Code != 200 {
		t.Fatalf("draft: %d", rec.Code)
	}
	draftID := body["entry"].(map[string]any)["id"].(float64)

	// Without confirmation the final submit is refused.
	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"id": draftID, "values": map[string]string{"campo_a": "x"}}, cookies)
	if rec.Code != http.StatusBadRequest || body["error"] != "confirmacion_requerida" {
		t.Fatalf("unconfirmed submit: code=%d body=%v", rec.Code, body)
	}

	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"id": draftID, "values": map[string]string{"campo_a": "x"}, "confirm": true}, cookies)
	if rec.Code != 200 {
		t.Fatalf("submit: want 200, got %d (%v)", rec.Code, body)
	}
	if body["reset"] != true {
		t.Errorf("submit should reset the session: %v", body)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cell_access" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("access cookie not cleared on submit")
	}

	// Session is back at the gate.
	rec, body = doJSON(t, r, http.MethodGet, "/p/"+token+"/", nil, nil)
	if rec.Code != 200 || body["gated"] != true {
		t.Fatalf("post-submit view should be gated: %v", body)
	}

	// Re-authenticating and writing against the old id fails: final.
	rec, _ = doJSON(t, r, http.MethodPost, "/p/"+token+"/access", map[string]string{"code": "BET-001"}, nil)
	cookies = rec.Result().Cookies()
	rec, body = doJSON(t, r, http.MethodPost, "/p/"+token+"/entries",
		map[string]any{"id": draftID, "values": map[string]string{"campo_a": "z"}, "draft": true}, cookies)
	if rec.Code != http.StatusConflict || body["error"] != "entrada_final" {
		t.Fatalf("write after submit: code=%d body=%v", rec.Code, body)
	}
}

func TestPublicMembersRoster(t *testing.T) {
	r, token, _ := setupRouter(t)

	rec, _ := doJSON(t, r, http.MethodPost, "/p/"+token+"/access", map[string]string{"code": "BET-001"}, nil)
	cookies := rec.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/p/"+token+"/members", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, req)
	if rec2.Code != 200 {
		t.Fatalf("members: want 200, got %d", rec2.Code)
	}
	var members []map[string]any
	if err := json.Unmarshal(rec2.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 1 || members[0]["name"] != "Marta" {
		t.Errorf("roster: %v", members)
	}
}
