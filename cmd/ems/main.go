package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/liAmirali/UIFP-final-project/internal/auth"
	"github.com/liAmirali/UIFP-final-project/internal/config"
	"github.com/liAmirali/UIFP-final-project/internal/console"
	"github.com/liAmirali/UIFP-final-project/internal/db"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

func main() {
	cfg := config.Load()

	store, err := db.OpenFileStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** Error: %v ***\nExiting EMS...\n", err)
		os.Exit(1)
	}
	closeLog := redirectLog(cfg.LogFile)
	defer closeLog()

	if len(os.Args) > 1 && os.Args[1] == "export-sqlite" {
		if err := ExportSQLite(store, cfg.SQLitePath, os.Getenv("EMS_MIGRATIONS_DIR")); err != nil {
			log.Printf("export failed: %v", err)
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %s to %s\n", cfg.DataDir, cfg.SQLitePath)
		return
	}

	signer := auth.NewSigner(cfg.JWTSecret)
	deps := console.Deps{
		Users:     services.NewUserService(store, signer.Sign, cfg.TokenTTL),
		Catalog:   services.NewCatalogService(store),
		Sessions:  services.NewSessionService(store),
		Results:   services.NewResultService(store),
		Tokens:    signer,
		ExportDir: cfg.DataDir,
	}
	log.Printf("EMS started with data dir %s", cfg.DataDir)
	if err := console.New(deps, os.Stdin, os.Stdout).Run(); err != nil {
		closeLog()
		os.Exit(1)
	}
}

// redirectLog sends the standard logger to path so it does not interleave
// with the console. Logging stays on stderr if the file cannot be opened.
func redirectLog(path string) func() {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("warning: create log dir: %v", err)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("warning: open log file: %v", err)
		return func() {}
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		if cerr := f.Close(); cerr != nil {
			log.Printf("warning: failed to close log file: %v", cerr)
		}
	}
}
