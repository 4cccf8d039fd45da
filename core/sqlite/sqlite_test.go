package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfoConsistency(t *testing.T) {
	info := GetInfo()
	if info.IsCGO != IsCGO() {
		t.Errorf("Info.IsCGO = %v, want %v", info.IsCGO, IsCGO())
	}
	switch info.DriverType {
	case "purego":
		if info.DriverName != "sqlite" {
			t.Errorf("purego driver should register as sqlite, got %q", info.DriverName)
		}
	case "cgo":
		if info.DriverName != "sqlite3" {
			t.Errorf("cgo driver should register as sqlite3, got %q", info.DriverName)
		}
	default:
		t.Errorf("unexpected driver type %q", info.DriverType)
	}
}

func TestOpenCreateQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)`, "a", "1"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	var v string
	if err := db.QueryRow(`SELECT v FROM kv WHERE k = ?`, "a").Scan(&v); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}
	if v != "1" {
		t.Errorf("v = %q, want 1", v)
	}
}
