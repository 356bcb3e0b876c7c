package handlers

import (
	"net/http"
	"os"
	"time"
)

const adminCookieName = "admin_session"

// Default password if env not set
func adminPassword() string {
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		return p
	}
	return "admin123" // change in production: export ADMIN_PASSWORD=...
}

// RequireAdmin is middleware: blocks the admin API unless logged in.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil || c.Value != "ok" {
			jsonError(w, http.StatusUnauthorized, "no_autorizado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// POST /admin/login
func AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := readJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "solicitud_invalida")
		return
	}
	if in.Password != adminPassword() {
		jsonError(w, http.StatusUnauthorized, "no_autorizado")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "ok",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	writeJSON(w, http.StatusOK, map[string]string{"ok": okMessage("guardado")})
}

// POST /admin/logout
func AdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}
