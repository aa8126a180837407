package main

import (
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/abelbrown/infopulse/internal/config"
	"github.com/abelbrown/infopulse/internal/store"
)

// dataDir returns the InfoPulse data directory, creating it if needed.
func dataDir() string {
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to infopulse.db.
func dbPath() string {
	return filepath.Join(dataDir(), "infopulse.db")
}

// eventLogPaths returns the event journals, oldest first.
func eventLogPaths() []string {
	paths, _ := filepath.Glob(filepath.Join(dataDir(), "logs", "events-*.jsonl"))
	sort.Strings(paths)
	return paths
}

// openDB opens the store or fatals.
func openDB() *store.Store {
	st, err := store.Open(dbPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
