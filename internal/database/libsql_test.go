package database

import (
	"path/filepath"
	"testing"
)

func TestNew_LocalFile(t *testing.T) {
	db, err := New("file:"+filepath.Join(t.TempDir(), "covarsim.db"), "")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE ping_check (id INTEGER PRIMARY KEY)`); err != nil {
		t.Errorf("exec on fresh connection: %v", err)
	}
}

func TestNew_UnreachablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "covarsim.db")
	if _, err := New("file:"+path, ""); err == nil {
		t.Error("expected error for database in nonexistent directory")
	}
}
