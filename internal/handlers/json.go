package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ccvida/reportes/internal/runtime"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}

// jsonError writes {error, message} where message is the user-facing
// Spanish text for the code, if one is registered.
func jsonError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": errMessage(code),
	})
}

// jsonValidationError points the client at the offending field so the
// message lands inline next to the control.
func jsonValidationError(w http.ResponseWriter, err error) {
	var ve *runtime.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":    "campo_invalido",
			"fieldKey": ve.FieldKey,
			"message":  ve.Message,
		})
		return
	}
	jsonError(w, http.StatusBadRequest, "solicitud_invalida")
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
