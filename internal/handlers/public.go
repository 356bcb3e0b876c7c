package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/runtime"
	"github.com/ccvida/reportes/internal/schema"
	"github.com/ccvida/reportes/internal/services"
)

// Public fill flow, reached through a report's share token. Cell-scoped
// reports are gated: until the access code checks out, the response
// carries no fields and no draft is looked up.

type publicReportVM struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Scope       string               `json:"scope"`
	Color       string               `json:"color,omitempty"`
	Gated       bool                 `json:"gated"`
	Fields      []fieldVM            `json:"fields,omitempty"`
	Access      *services.CellAccess `json:"access,omitempty"`
}

func publicReport(r *http.Request) (*models.Report, string, error) {
	token := chi.URLParam(r, "token")
	rep, err := services.ReportByToken(token)
	return rep, token, err
}

// GET /p/{token}
func PublicReportShow(w http.ResponseWriter, r *http.Request) {
	rep, _, err := publicReport(r)
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	vm := publicReportVM{
		Title:       rep.Title,
		Description: rep.Description,
		Scope:       rep.Scope,
		Color:       rep.Color,
	}
	if rep.Scope == schema.ScopeCell {
		access := gatedCell(r)
		if access == nil {
			vm.Gated = true
			writeJSON(w, http.StatusOK, vm)
			return
		}
		vm.Access = access
	}
	for _, f := range rep.Fields {
		vm.Fields = append(vm.Fields, fieldView(f))
	}
	writeJSON(w, http.StatusOK, vm)
}

// POST /p/{token}/access
func PublicAccessSubmit(w http.ResponseWriter, r *http.Request) {
	rep, token, err := publicReport(r)
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	if rep.Scope != schema.ScopeCell {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	var in struct {
		Code string `json:"code"`
	}
	if err := readJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	access, err := services.VerifyCellAccess(in.Code)
	if err != nil {
		if errors.Is(err, services.ErrBadAccessCode) {
			jsonError(w, http.StatusUnauthorized, "codigo_invalido")
			return
		}
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	setAccessCookie(w, token, in.Code)
	writeJSON(w, http.StatusOK, map[string]any{"access": access})
}

// POST /p/{token}/reset
func PublicReset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	clearAccessCookie(w, token)
	w.WriteHeader(http.StatusNoContent)
}

// GET /p/{token}/entities
func PublicEntitiesIndex(w http.ResponseWriter, r *http.Request) {
	if _, _, err := publicReport(r); err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	cells, groups, sectors, err := services.PublicEntities()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	type entityVM struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	out := map[string][]entityVM{"cells": {}, "groups": {}, "sectors": {}}
	for _, c := range cells {
		out["cells"] = append(out["cells"], entityVM{c.ID, c.Name})
	}
	for _, g := range groups {
		out["groups"] = append(out["groups"], entityVM{g.ID, g.Name})
	}
	for _, s := range sectors {
		out["sectors"] = append(out["sectors"], entityVM{s.ID, s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /p/{token}/members?cell=
func PublicMembersIndex(w http.ResponseWriter, r *http.Request) {
	rep, _, err := publicReport(r)
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	var cellID uint
	if rep.Scope == schema.ScopeCell {
		access := gatedCell(r)
		if access == nil {
			jsonError(w, http.StatusUnauthorized, "acceso_requerido")
			return
		}
		cellID = access.CellID
	} else {
		n, _ := strconv.Atoi(r.URL.Query().Get("cell"))
		if n <= 0 {
			jsonError(w, http.StatusBadRequest, "falta_entidad")
			return
		}
		cellID = uint(n)
	}
	members, err := services.CellMembers(cellID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	type memberVM struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	out := make([]memberVM, 0, len(members))
	for _, m := range members {
		out = append(out, memberVM{m.ID, m.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /p/{token}/draft
func PublicDraftShow(w http.ResponseWriter, r *http.Request) {
	rep, _, err := publicReport(r)
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	entity, ok := publicEntity(w, r, rep)
	if !ok {
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

// POST /p/{token}/entries
func PublicEntriesCreate(w http.ResponseWriter, r *http.Request) {
	rep, token, err := publicReport(r)
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	var req entryRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	if rep.Scope == schema.ScopeCell {
		access := gatedCell(r)
		if access == nil {
			jsonError(w, http.StatusUnauthorized, "acceso_requerido")
			return
		}
		req.CellID = &access.CellID
	}
	if !req.Draft && !req.Confirm {
		jsonError(w, http.StatusBadRequest, "confirmacion_requerida")
		return
	}
	entry, err := services.SaveEntry(services.EntryInput{
		ID:       req.ID,
		ReportID: rep.ID,
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

	if req.Draft {
		writeJSON(w, http.StatusOK, map[string]any{
			"entry": entryView(entry),
			"ok":    okMessage("borrador_guardado"),
		})
		return
	}

	// One device, one submission session: a final submit drops the
	// access gate so the form starts over.
	clearAccessCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"entry": entryView(entry),
		"ok":    okMessage("enviado"),
		"reset": true,
	})
}

func publicEntity(w http.ResponseWriter, r *http.Request, rep *models.Report) (*uint, bool) {
	switch rep.Scope {
	case schema.ScopeChurch:
		return nil, true
	case schema.ScopeCell:
		access := gatedCell(r)
		if access == nil {
			jsonError(w, http.StatusUnauthorized, "acceso_requerido")
			return nil, false
		}
		id := access.CellID
		return &id, true
	}
	entity := draftEntityParam(r, rep.Scope)
	if entity == nil {
		jsonError(w, http.StatusBadRequest, "falta_entidad")
		return nil, false
	}
	return entity, true
}
