package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Its-donkey/signup-board/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != defaultListen || cfg.API.BaseURL != defaultAPIBase {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel() != logging.INFO {
		t.Fatalf("expected INFO, got %s", cfg.LogLevel())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: 0.0.0.0:9000
  assets_dir: dist
api:
  base_url: http://api.internal:8000/
log:
  level: debug
  file: board.log
`)
	t.Setenv("BOARD_API_URL", "https://activities.example.com")
	t.Setenv("BOARD_LOG_MAX_BACKUPS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" || cfg.Server.AssetsDir != "dist" {
		t.Fatalf("expected file values, got %+v", cfg.Server)
	}
	if cfg.API.BaseURL != "https://activities.example.com" {
		t.Fatalf("expected env to win, got %q", cfg.API.BaseURL)
	}
	if cfg.Log.MaxBackups != 3 || cfg.Log.File != "board.log" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
	if cfg.LogLevel() != logging.DEBUG {
		t.Fatalf("expected DEBUG, got %s", cfg.LogLevel())
	}
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://localhost:8000/\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"relative url":  "api:\n  base_url: /activities\n",
		"ftp url":       "api:\n  base_url: ftp://example.com\n",
		"unknown level": "log:\n  level: shouty\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFlagsOverrideInvalidEnvironment(t *testing.T) {
	t.Setenv("BOARD_API_URL", "not-a-url")
	cfg, err := Load(writeConfig(t, "server:\n  listen: 0.0.0.0:9000\n"))
	if err != nil {
		t.Fatalf("expected load to defer validation, got %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected environment value to be invalid on its own")
	}

	cfg.Apply(Overrides{APIBase: "http://127.0.0.1:8000/", Listen: " "})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected flag override to win, got %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("expected trimmed flag value, got %q", cfg.API.BaseURL)
	}
	if cfg.Server.Listen != "0.0.0.0:9000" {
		t.Fatalf("expected blank flag to keep file value, got %q", cfg.Server.Listen)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestOpenLogFile(t *testing.T) {
	cfg := Default()
	fw, err := cfg.OpenLogFile()
	if err != nil || fw != nil {
		t.Fatalf("expected no file without a name, got %v, %v", fw, err)
	}

	cfg.Log.Dir = t.TempDir()
	cfg.Log.File = "board.log"
	fw, err = cfg.OpenLogFile()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fw.Close()
	if fw.Path() != filepath.Join(cfg.Log.Dir, "board.log") {
		t.Fatalf("unexpected path %q", fw.Path())
	}
}
