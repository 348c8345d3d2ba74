package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ubxctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `port = "/dev/ttyUSB0"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" {
		t.Fatalf("port: %q", cfg.Port)
	}
	if cfg.Baud != 38400 || cfg.HTTPAddr != ":9120" || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
port = "/dev/ttyACM1"
baud = 115200
strict = true
http_addr = ":8080"
cors_origins = ["http://localhost:3000"]
log_level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Baud != 115200 || !cfg.Strict || cfg.LogLevel != "debug" {
		t.Fatalf("parsed config: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 {
		t.Fatalf("cors origins: %v", cfg.CorsOrigins)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"empty port":   `port = ""`,
		"zero baud":    `baud = 0`,
		"bad level":    `log_level = "loud"`,
		"no http addr": `http_addr = " "`,
	} {
		path := writeConfig(t, body)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
