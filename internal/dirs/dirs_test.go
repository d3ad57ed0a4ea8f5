package dirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	cfg, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "cfg", "ytdlq"); cfg != want {
		t.Errorf("ConfigDir() = %q, want %q", cfg, want)
	}
	logFile, err := LogFile()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, "state", "ytdlq", "ytdlq.log"); logFile != want {
		t.Errorf("LogFile() = %q, want %q", logFile, want)
	}

	if err := EnsureAll(); err != nil {
		t.Fatalf("EnsureAll() = %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(logFile)); err != nil || !fi.IsDir() {
		t.Errorf("state dir not created: %v", err)
	}
}

func TestDefaultOutputDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := DefaultOutputDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != home {
		t.Errorf("without Downloads: %q, want %q", got, home)
	}

	dl := filepath.Join(home, "Downloads")
	if err := os.Mkdir(dl, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err = DefaultOutputDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dl {
		t.Errorf("with Downloads: %q, want %q", got, dl)
	}
}

func TestEnsureEmpty(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Error("Ensure(\"\") should fail")
	}
}
