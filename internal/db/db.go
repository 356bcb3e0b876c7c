package db

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ccvida/reportes/internal/models"
)

var conn *gorm.DB

func Init() error {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "reportes.db"
	}

	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Report{},
		&models.ReportField{},
		&models.ReportEntry{},
		&models.ReportEntryValue{},
		&models.Sector{},
		&models.Group{},
		&models.Cell{},
		&models.Member{},
		&models.Friend{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_field_report_pos   ON report_fields(report_id, position)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_entry_report_state ON report_entries(report_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_value_entry        ON report_entry_values(entry_id)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
