package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

var configEnvKeys = []string{
	"HOME",
	configPathEnvName,
	"CHATDOC_ADDR",
	"CHATDOC_ALLOWED_ORIGINS",
	"CHATDOC_PANDOC_PATH",
	"CHATDOC_WKHTMLTOPDF_PATH",
	"CHATDOC_PDF_ENGINE",
	"CHATDOC_PDF_PRECLEAN",
	"CHATDOC_NATIVE_FONT_PATH",
	"CHATDOC_TEMP_DIR",
	"CHATDOC_MAX_CONCURRENT",
	"CHATDOC_LOG_LEVEL",
	"CHATDOC_LOG_FORMAT",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset env %s: %v", key, err)
		}
	}
}

func writeConfigFile(t *testing.T, home string, body string) string {
	t.Helper()
	path := filepath.Join(home, ".config", configFolderName, configFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfig_NoConfigFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":8000" || cfg.PandocPath != "pandoc" || cfg.WkhtmltopdfPath != "wkhtmltopdf" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PDFEngine != EngineWkhtmltopdf || cfg.PDFPreclean || cfg.MaxConcurrent != 0 {
		t.Fatalf("unexpected pdf defaults: %+v", cfg)
	}
	if !slices.Equal(cfg.AllowedOrigins, DefaultAllowedOrigins) {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	clearConfigEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfigFile(t, home, `
addr = "127.0.0.1:9000"
allowed_origins = ["https://example.com"]
pandoc_path = "/opt/pandoc/bin/pandoc"
pdf_engine = "native"
pdf_preclean = true
native_font_path = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
max_concurrent = 4
log_format = "json"
`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.PandocPath != "/opt/pandoc/bin/pandoc" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PDFEngine != EngineNative || !cfg.PDFPreclean || cfg.MaxConcurrent != 4 || cfg.LogFormat != "json" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.NativeFontPath != "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf" {
		t.Fatalf("native font path = %q", cfg.NativeFontPath)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"https://example.com"}) {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
	if cfg.WkhtmltopdfPath != "wkhtmltopdf" {
		t.Fatalf("unset key should keep its default: %q", cfg.WkhtmltopdfPath)
	}
}

func TestLoadConfig_XDGTakesPrecedence(t *testing.T) {
	clearConfigEnv(t)
	home := t.TempDir()
	xdg := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(configPathEnvName, xdg)
	writeConfigFile(t, home, `addr = ":1111"`)

	xdgPath := filepath.Join(xdg, configFolderName, configFileName)
	if err := os.MkdirAll(filepath.Dir(xdgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(xdgPath, []byte(`addr = ":2222"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":2222" {
		t.Fatalf("addr = %q, want the XDG value", cfg.Addr)
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte(`temp_dir = "/var/tmp/chatdoc"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TempDir != "/var/tmp/chatdoc" {
		t.Fatalf("temp dir = %q", cfg.TempDir)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing explicit config")
	}
}

func TestLoadConfig_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "addr = \":1\"\nbogus = 1\nother = 2", "unknown key(s): bogus, other"},
		{"bad engine", `pdf_engine = "chrome"`, "pdf_engine"},
		{"negative concurrency", `max_concurrent = -1`, "max_concurrent"},
		{"empty pandoc", `pandoc_path = " "`, "pandoc_path"},
		{"bad log format", `log_format = "xml"`, "log_format"},
		{"syntax", `addr = `, "invalid config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			home := t.TempDir()
			t.Setenv("HOME", home)
			writeConfigFile(t, home, tt.body)

			_, err := LoadConfig("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfigFile(t, home, "addr = \":1111\"\nmax_concurrent = 2")

	t.Setenv("CHATDOC_ADDR", ":3333")
	t.Setenv("CHATDOC_MAX_CONCURRENT", "8")
	t.Setenv("CHATDOC_PDF_PRECLEAN", "true")
	t.Setenv("CHATDOC_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CHATDOC_LOG_LEVEL", "debug")
	t.Setenv("CHATDOC_NATIVE_FONT_PATH", "/fonts/NotoSansCJK.ttf")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":3333" || cfg.MaxConcurrent != 8 || !cfg.PDFPreclean || cfg.LogLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.NativeFontPath != "/fonts/NotoSansCJK.ttf" {
		t.Fatalf("native font path = %q", cfg.NativeFontPath)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_InvalidEnvValuesIgnored(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATDOC_MAX_CONCURRENT", "-3")
	t.Setenv("CHATDOC_PDF_PRECLEAN", "maybe")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxConcurrent != 0 || cfg.PDFPreclean {
		t.Fatalf("invalid env values should be ignored: %+v", cfg)
	}
}

func TestLoadConfig_RejectsUnknownEngineFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATDOC_PDF_ENGINE", "chrome")

	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected an error for an unknown pdf engine")
	}
}
