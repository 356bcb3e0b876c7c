package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ccvida/reportes/internal/services"
)

func publicURL(r *http.Request, token string) string {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://" + r.Host
	}
	return strings.TrimRight(base, "/") + "/p/" + token
}

// GET /qr/{token}.png
func QR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.NotFound(w, r)
		return
	}
	// ensure the token resolves to a shared report
	if _, err := services.ReportByToken(token); err != nil {
		http.NotFound(w, r)
		return
	}

	// Encode a URL so scanning opens the public form directly
	png, err := qrcode.Encode(publicURL(r, token), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
