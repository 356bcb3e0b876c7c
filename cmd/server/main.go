package main

import (
	"log"
	"net/http"
	"os"

	"github.com/ccvida/reportes/internal/db"
	"github.com/ccvida/reportes/internal/events"
	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/web"
)

func main() {
	// Init DB (creates reportes.db in working dir unless DB_PATH set)
	if err := db.Init(); err != nil {
		log.Fatalf("db init: %v", err)
	}

	events.OnEntrySubmitted = func(e models.ReportEntry) {
		log.Printf("entry %d submitted for report %d (%s)", e.ID, e.ReportID, e.Scope)
	}

	r := web.Router()

	addr := getEnv("ADDR", ":8080")
	log.Printf("Reportes listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
