package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/liAmirali/UIFP-final-project/internal/db"
)

// ExportSQLite writes a read-only SQLite snapshot of the flat-file store,
// for reporting tools. An existing snapshot is refreshed in place.
func ExportSQLite(store *db.FileStore, sqlitePath, migrationsDir string) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}()

	if err := db.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Printf("Exporting %s to %s...", store.Dir(), sqlitePath)
	counts, err := db.ExportSQLite(store, sqliteDB)
	if err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	log.Printf("Export completed: %d users, %d exams, %d questions, %d answers, %d results, %d completions",
		counts.Users, counts.Exams, counts.Questions, counts.Answers, counts.Results, counts.Completions)
	return nil
}
