package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Viewer.Engine != "dot" || cfg.Export.Format != "png" || cfg.Cache.Backend != "file" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[viewer]
engine = "neato"
fancy = true

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Viewer.Engine != "neato" || !cfg.Viewer.Fancy {
		t.Errorf("viewer = %+v", cfg.Viewer)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Export.Format != "png" {
		t.Errorf("export format = %q, want default %q", cfg.Export.Format, "png")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("viewer = not toml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() error = nil for malformed TOML")
	}
}

func TestDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got, want := Dir(), filepath.Join("/tmp/xdg-test", "graphscope"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}
