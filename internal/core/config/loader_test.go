package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vietddude/faultguard/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cascade.MaxCascadingErrors != 5 {
		t.Errorf("ceiling = %d, want 5", cfg.Cascade.MaxCascadingErrors)
	}
	if len(cfg.Controllers) != 5 {
		t.Fatalf("controllers = %d, want one per domain", len(cfg.Controllers))
	}
	for _, cc := range cfg.Controllers {
		if cc.ID != string(cc.Domain) {
			t.Errorf("controller id %q does not default to its domain", cc.ID)
		}
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("FG_TEST_DB_URL", "postgres://localhost/faultguard")
	path := writeConfig(t, `
server:
  port: 9090
cascade:
  max_cascading_errors: 7
database:
  url: ${FG_TEST_DB_URL}
controllers:
  - id: chat
    domain: dialogue
    max_attempts: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/faultguard" {
		t.Errorf("env not expanded: %q", cfg.Database.URL)
	}
	if cfg.Server.Port != 9090 || cfg.Cascade.MaxCascadingErrors != 7 {
		t.Errorf("explicit values overridden: %+v", cfg)
	}
	if len(cfg.Controllers) != 1 {
		t.Fatalf("controllers = %d, want 1", len(cfg.Controllers))
	}
	cc := cfg.Controllers[0]
	if cc.ID != "chat" || cc.Domain != domain.DomainDialogue || cc.MaxAttempts != 5 {
		t.Errorf("controller = %+v", cc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
