package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ARENA_ENGINES_FILE", "ARENA_REDIS_URL", "ARENA_DATABASE_URL", "ARENA_WATCH_ADDR", "ARENA_PLY_CAP", "ARENA_MOVE_DELAY", "ARENA_LIVE_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WatchAddr != ":8807" {
		t.Fatalf("watch addr = %q", cfg.WatchAddr)
	}
	if cfg.PlyCap != 512 {
		t.Fatalf("ply cap = %d", cfg.PlyCap)
	}
	if cfg.LiveTTL != time.Hour {
		t.Fatalf("live ttl = %v", cfg.LiveTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARENA_PLY_CAP", "100")
	t.Setenv("ARENA_MOVE_DELAY", "250ms")
	t.Setenv("ARENA_WATCH_ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PlyCap != 100 || cfg.MoveDelay != 250*time.Millisecond || cfg.WatchAddr != "127.0.0.1:9000" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadPlyCap(t *testing.T) {
	t.Setenv("ARENA_PLY_CAP", "zero")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric ply cap")
	}

	t.Setenv("ARENA_PLY_CAP", "-4")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a negative ply cap")
	}
}

func TestLoadCatalogDefaults(t *testing.T) {
	catalog, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, ok := catalog["stockfish"]; !ok {
		t.Fatal("stockfish missing from the default catalog")
	}
	if _, ok := catalog["gnuchess"]; !ok {
		t.Fatal("gnuchess missing from the default catalog")
	}
}

func TestLoadCatalogOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	body := `engines:
  - name: stockfish
    command: /opt/stockfish/stockfish
    depth: 12
  - name: Lc0
    command: lc0
    movetime: 500
    options:
      - name: Threads
        value: "2"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write engines file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	sf := catalog["stockfish"]
	if sf.Command != "/opt/stockfish/stockfish" || sf.Depth != 12 {
		t.Fatalf("stockfish overlay = %+v", sf)
	}
	lc0, ok := catalog["lc0"]
	if !ok {
		t.Fatal("lc0 should be keyed by lowercased name")
	}
	if lc0.MoveTimeMillis != 500 || len(lc0.Options) != 1 {
		t.Fatalf("lc0 = %+v", lc0)
	}
}

func TestLoadCatalogRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	if err := os.WriteFile(path, []byte("engines:\n  - name: broken\n"), 0o644); err != nil {
		t.Fatalf("write engines file: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("an engine without a command should be rejected")
	}
}
