package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/runtime"
	"github.com/ccvida/reportes/internal/schema"
	"github.com/ccvida/reportes/internal/services"
)

// entryRequest is the wire shape for draft saves and submits. A final
// submit must carry confirm=true: the client asks for confirmation in a
// modal and the server refuses unconfirmed finals.
type entryRequest struct {
	ID       uint              `json:"id,omitempty"`
	CellID   *uint             `json:"cellId,omitempty"`
	GroupID  *uint             `json:"groupId,omitempty"`
	SectorID *uint             `json:"sectorId,omitempty"`
	Values   map[string]string `json:"values"`
	Draft    bool              `json:"draft"`
	Confirm  bool              `json:"confirm"`
}

func entryErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEntryFinal):
		return http.StatusConflict, "entrada_final"
	case errors.Is(err, services.ErrMissingEntity):
		return http.StatusBadRequest, "falta_entidad"
	case errors.Is(err, services.ErrEntryMismatched):
		return http.StatusBadRequest, "entrada_no_encontrada"
	case errors.Is(err, services.ErrScopeMismatch):
		// A foreign entity's entry looks like no entry at all.
		return http.StatusNotFound, "entrada_no_encontrada"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "entrada_no_encontrada"
	}
	return http.StatusInternalServerError, "error_interno"
}

func saveEntry(w http.ResponseWriter, reportID uint, req entryRequest) {
	if !req.Draft && !req.Confirm {
		jsonError(w, http.StatusBadRequest, "confirmacion_requerida")
		return
	}
	entry, err := services.SaveEntry(services.EntryInput{
		ID:       req.ID,
		ReportID: reportID,
		CellID:   req.CellID,
		GroupID:  req.GroupID,
		SectorID: req.SectorID,
		Values:   req.Values,
		Draft:    req.Draft,
	})
	if err != nil {
		var ve *runtime.ValidationError
		if errors.As(err, &ve) {
			jsonValidationError(w, err)
			return
		}
		status, code := entryErrorStatus(err)
		jsonError(w, status, code)
		return
	}

	ok := "enviado"
	if req.Draft {
		ok = "borrador_guardado"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entry": entryView(entry),
		"ok":    okMessage(ok),
	})
}

// GET /api/reports/{id}/entries
func EntriesIndex(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	entries, err := services.ListEntries(uint(id))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	out := make([]entryVM, 0, len(entries))
	for i := range entries {
		out = append(out, entryView(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/reports/{id}/entries
func EntriesCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var req entryRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	req.ID = 0
	saveEntry(w, uint(id), req)
}

// PUT /api/entries/{id}
func EntriesUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var req entryRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	entry, err := services.GetEntry(uint(id))
	if err != nil {
		status, code := entryErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	req.ID = entry.ID
	saveEntry(w, entry.ReportID, req)
}

// DELETE /api/entries/{id}
func EntriesDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := services.DeleteEntry(uint(id)); err != nil {
		status, code := entryErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/reports/{id}/draft?cell=&group=&sector=
func DraftShow(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	rep, err := services.GetReport(uint(id))
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	entity := draftEntityParam(r, rep.Scope)
	if rep.Scope != schema.ScopeChurch && entity == nil {
		jsonError(w, http.StatusBadRequest, "falta_entidad")
		return
	}
	draft, err := services.GetDraft(rep.ID, rep.Scope, entity)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	if draft == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entry": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entryView(draft)})
}

func draftEntityParam(r *http.Request, scope string) *uint {
	var name string
	switch scope {
	case schema.ScopeCell:
		name = "cell"
	case schema.ScopeGroup:
		name = "group"
	case schema.ScopeSector:
		name = "sector"
	default:
		return nil
	}
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return nil
	}
	id := uint(n)
	return &id
}
