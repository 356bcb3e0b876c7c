package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ccvida/reportes/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// --- Public fill flow (share token, no login) ---
	r.Route("/p/{token}", func(pr chi.Router) {
		pr.Get("/", handlers.PublicReportShow)
		pr.Post("/access", handlers.PublicAccessSubmit)
		pr.Post("/reset", handlers.PublicReset)
		pr.Get("/entities", handlers.PublicEntitiesIndex)
		pr.Get("/members", handlers.PublicMembersIndex)
		pr.Get("/draft", handlers.PublicDraftShow)
		pr.Post("/entries", handlers.PublicEntriesCreate)
	})

	// QR image for share links
	r.Get("/qr/{token}.png", handlers.QR)

	// --- Admin auth ---
	r.Post("/admin/login", handlers.AdminLoginSubmit)
	r.Post("/admin/logout", handlers.AdminLogout)

	// --- Operator API (guarded) ---
	r.Route("/api", func(ar chi.Router) {
		ar.Use(handlers.RequireAdmin)

		ar.Get("/reports", handlers.ReportsIndex)
		ar.Post("/reports", handlers.ReportsCreate)
		ar.Get("/reports/{id}", handlers.ReportsShow)
		ar.Put("/reports/{id}", handlers.ReportsUpdate)
		ar.Delete("/reports/{id}", handlers.ReportsDelete)

		ar.Post("/reports/{id}/share", handlers.ReportShareEnable)
		ar.Delete("/reports/{id}/share", handlers.ReportShareDisable)

		ar.Get("/reports/{id}/builder-state", handlers.BuilderStateShow)
		ar.Put("/reports/{id}/builder-state", handlers.BuilderStateUpdate)

		ar.Get("/reports/{id}/entries", handlers.EntriesIndex)
		ar.Post("/reports/{id}/entries", handlers.EntriesCreate)
		ar.Get("/reports/{id}/draft", handlers.DraftShow)

		ar.Put("/entries/{id}", handlers.EntriesUpdate)
		ar.Delete("/entries/{id}", handlers.EntriesDelete)
	})

	return r
}
