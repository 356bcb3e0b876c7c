package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/builder"
	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/services"
)

func reportErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMissingTitle):
		return http.StatusBadRequest, "titulo_requerido"
	case errors.Is(err, services.ErrInvalidScope):
		return http.StatusBadRequest, "alcance_invalido"
	case errors.Is(err, services.ErrInvalidType):
		return http.StatusBadRequest, "tipo_invalido"
	case errors.Is(err, services.ErrDuplicateKey):
		return http.StatusBadRequest, "clave_duplicada"
	case errors.Is(err, services.ErrUnknownField):
		return http.StatusBadRequest, "campo_desconocido"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "reporte_no_encontrado"
	}
	return http.StatusInternalServerError, "error_interno"
}

// GET /api/reports
func ReportsIndex(w http.ResponseWriter, r *http.Request) {
	var reports []models.Report
	err := db.Conn().Preload("Fields", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc, id asc")
	}).Order("lower(title) asc").Find(&reports).Error
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	out := make([]reportVM, 0, len(reports))
	for i := range reports {
		out = append(out, reportView(&reports[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/reports
func ReportsCreate(w http.ResponseWriter, r *http.Request) {
	var in services.ReportInput
	if err := readJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	rep, err := services.CreateReport(in)
	if err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	writeJSON(w, http.StatusCreated, reportView(rep))
}

// GET /api/reports/{id}
func ReportsShow(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	rep, err := services.GetReport(uint(id))
	if err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, reportView(rep))
}

// PUT /api/reports/{id}
func ReportsUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in services.ReportInput
	if err := readJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	rep, err := services.UpdateReportWithFields(uint(id), in)
	if err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, reportView(rep))
}

// DELETE /api/reports/{id}
func ReportsDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := services.DeleteReport(uint(id)); err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/reports/{id}/share
func ReportShareEnable(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	token, err := services.EnableSharing(uint(id))
	if err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"url":   publicURL(r, token),
		"qr":    "/qr/" + token + ".png",
		"ok":    okMessage("compartido"),
	})
}

// DELETE /api/reports/{id}/share
func ReportShareDisable(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := services.DisableSharing(uint(id)); err != nil {
		status, code := reportErrorStatus(err)
		jsonError(w, status, code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ok": okMessage("descompartido")})
}

// GET /api/reports/{id}/builder-state
func BuilderStateShow(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var rep models.Report
	if err := db.Conn().First(&rep, id).Error; err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}
	writeJSON(w, http.StatusOK, builder.DecodeUIState(rep.BuilderState))
}

// PUT /api/reports/{id}/builder-state
func BuilderStateUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in builder.UIState
	if err := readJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	rep, err := services.GetReport(uint(id))
	if err != nil {
		jsonError(w, http.StatusNotFound, "reporte_no_encontrado")
		return
	}

	// Keep only state for fields that actually exist on the report.
	flat := make([]*builder.Field, 0, len(rep.Fields))
	for _, f := range rep.Fields {
		bf := &builder.Field{UID: f.UID, Type: f.Type, Value: f.Value}
		flat = append(flat, bf)
	}
	doc := builder.ParseFields(flat)
	in.Prune(doc)

	if err := db.Conn().Model(&models.Report{}).Where("id = ?", rep.ID).
		Update("builder_state", in.Encode()).Error; err != nil {
		jsonError(w, http.StatusInternalServerError, "error_interno")
		return
	}
	writeJSON(w, http.StatusOK, in)
}
