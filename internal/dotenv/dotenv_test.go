package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingFileIsNoop(t *testing.T) {
	t.Parallel()
	if err := LoadFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadFile missing file error: %v", err)
	}
}

func TestLoadFile_LoadsValuesAndPreservesExisting(t *testing.T) {
	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, ".env")
	content := "" +
		"# local overrides\n" +
		"BALCAO_ADDR=:9090\n" +
		"BALCAO_PRINTER_ADDR=\"192.168.0.50:9100\"\n" +
		"export STRIPE_SECRET_KEY=sk_test_abc\n" +
		"GEMINI_API_KEY=from_file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "already_set")

	if err := LoadFile(envPath); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if got := os.Getenv("BALCAO_ADDR"); got != ":9090" {
		t.Fatalf("BALCAO_ADDR=%q, want %q", got, ":9090")
	}
	if got := os.Getenv("BALCAO_PRINTER_ADDR"); got != "192.168.0.50:9100" {
		t.Fatalf("BALCAO_PRINTER_ADDR=%q, want quotes stripped", got)
	}
	if got := os.Getenv("STRIPE_SECRET_KEY"); got != "sk_test_abc" {
		t.Fatalf("STRIPE_SECRET_KEY=%q, want %q", got, "sk_test_abc")
	}
	if got := os.Getenv("GEMINI_API_KEY"); got != "already_set" {
		t.Fatalf("GEMINI_API_KEY=%q, want existing value preserved", got)
	}
}
