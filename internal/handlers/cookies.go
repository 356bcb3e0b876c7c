package handlers

import (
	"net/http"
	"time"

	"github.com/ccvida/reportes/internal/services"
)

const accessCookieName = "cell_access"

// The access cookie stores the cell's shared code, scoped to the one
// public report path, and is re-verified against the database on every
// gated request. Clearing it resets the session to the gate.

func setAccessCookie(w http.ResponseWriter, token, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    code,
		Path:     "/p/" + token,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(12 * time.Hour),
	})
}

func clearAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    "",
		Path:     "/p/" + token,
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// gatedCell resolves the access cookie to its cell. A stale or missing
// cookie simply means "not authenticated".
func gatedCell(r *http.Request) *services.CellAccess {
	c, err := r.Cookie(accessCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	access, err := services.VerifyCellAccess(c.Value)
	if err != nil {
		return nil
	}
	return access
}
