package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeTemp(t, "cfg.yaml", `
addr: ":9090"
model_dir: /srv/models
temperature: 0.2
max_tokens: 128
cancel_on_new_request: false
log_level: debug
cors_enabled: true
cors_origins: ["https://a.example"]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.ModelDir != "/srv/models" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if cfg.Temperature != 0.2 || cfg.MaxTokens != 128 {
		t.Fatalf("unexpected generation options %+v", cfg)
	}
	if cfg.CancelOnNewRequest == nil || *cfg.CancelOnNewRequest {
		t.Fatalf("explicit false must survive decoding")
	}
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cors settings %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	p := writeTemp(t, "cfg.json", `{"addr": ":8081", "max_tokens": 64}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.MaxTokens != 64 {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if cfg.CancelOnNewRequest != nil {
		t.Fatalf("unspecified policy must stay nil")
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeTemp(t, "cfg.toml", "addr = \":7070\"\nlog_file = \"/var/log/visiond.log\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.LogFile != "/var/log/visiond.log" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	p := writeTemp(t, "cfg.ini", "addr=:1\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	p = writeTemp(t, "bad.json", "{not json")
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
