package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/amirbrooks/memo/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Dirs: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorePath() != DefaultPath {
		t.Errorf("StorePath() = %q, want %q", cfg.StorePath(), DefaultPath)
	}
	if !cfg.ConfirmDeleteAll() {
		t.Error("ConfirmDeleteAll() = false, want true by default")
	}
	if _, ok := cfg.AutoDoneCutoff(); ok {
		t.Error("AutoDoneCutoff() should be unset by default")
	}
	if cfg.File() != "" {
		t.Errorf("File() = %q, want empty", cfg.File())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, "path: /tmp/notes\nconfirm_delete_all: false\nauto_done_before: \"2014-11-02\"\nlog:\n  level: debug\n")
	cfg, err := Load(Options{Dirs: []string{dir}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorePath() != "/tmp/notes" {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
	if cfg.ConfirmDeleteAll() {
		t.Error("ConfirmDeleteAll() = true, want false")
	}
	cutoff, ok := cfg.AutoDoneCutoff()
	if !ok || cutoff != (store.Date{Year: 2014, Month: 11, Day: 2}) {
		t.Errorf("AutoDoneCutoff() = %v, %v", cutoff, ok)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.File() != filepath.Join(dir, "config.yaml") {
		t.Errorf("File() = %q", cfg.File())
	}
}

func TestPrecedence(t *testing.T) {
	dir := writeConfig(t, "path: /from/file\n")

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("MEMO_PATH", "/from/env")
		cfg, err := Load(Options{Dirs: []string{dir}})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.StorePath() != "/from/env" {
			t.Errorf("StorePath() = %q, want /from/env", cfg.StorePath())
		}
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("MEMO_PATH", "/from/env")
		fs := pflag.NewFlagSet("memo", pflag.ContinueOnError)
		fs.String("file", "", "")
		fs.String("log-level", "", "")
		if err := fs.Parse([]string{"--file", "/from/flag"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(Options{Dirs: []string{dir}, Flags: fs})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.StorePath() != "/from/flag" {
			t.Errorf("StorePath() = %q, want /from/flag", cfg.StorePath())
		}
	})

	t.Run("unset flag does not override", func(t *testing.T) {
		fs := pflag.NewFlagSet("memo", pflag.ContinueOnError)
		fs.String("file", "", "")
		cfg, err := Load(Options{Dirs: []string{dir}, Flags: fs})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.StorePath() != "/from/file" {
			t.Errorf("StorePath() = %q, want /from/file", cfg.StorePath())
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("MEMO_AUTO_DONE_DAYS=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MEMO_AUTO_DONE_DAYS") })

	cfg, err := Load(Options{Dirs: []string{t.TempDir()}, EnvFiles: []string{envFile}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cutoff, ok := cfg.AutoDoneCutoff()
	if !ok {
		t.Fatal("AutoDoneCutoff() unset, want three days ago")
	}
	if want := store.Today().AddDays(-3); cutoff != want {
		t.Errorf("AutoDoneCutoff() = %v, want %v", cutoff, want)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad date", "auto_done_before: \"2014-02-30\"\n"},
		{"negative days", "auto_done_days: -1\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"empty path", "path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Options{Dirs: []string{writeConfig(t, tt.body)}})
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSetWritesYAML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(Options{Dirs: []string{Dir()}})
	if err != nil {
		t.Fatal(err)
	}

	path, err := cfg.Set("log.level", "INFO")
	if err != nil {
		t.Fatalf("Set(log.level) error = %v", err)
	}
	if path != DefaultFile() {
		t.Errorf("Set wrote %q, want %q", path, DefaultFile())
	}
	if _, err := cfg.Set("confirm_delete_all", "no"); err != nil {
		t.Fatalf("Set(confirm_delete_all) error = %v", err)
	}
	if _, err := cfg.Set("auto_done_days", "7"); err != nil {
		t.Fatalf("Set(auto_done_days) error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"level: info", "confirm_delete_all: false", "auto_done_days: 7"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}

	reloaded, err := Load(Options{Dirs: []string{Dir()}})
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ConfirmDeleteAll() || reloaded.AutoDoneDays != 7 || reloaded.Log.Level != "info" {
		t.Errorf("reloaded config = %+v", reloaded)
	}
	entries, _ := os.ReadDir(Dir())
	if len(entries) != 1 {
		t.Errorf("config dir has %d entries, want only config.yaml", len(entries))
	}
}

func TestSetRejects(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(Options{Dirs: []string{Dir()}})
	if err != nil {
		t.Fatal(err)
	}
	for _, kv := range [][2]string{
		{"color", "blue"},
		{"confirm_delete_all", "maybe"},
		{"auto_done_before", "11/02/2014"},
		{"auto_done_days", "-2"},
		{"path", ""},
	} {
		if _, err := cfg.Set(kv[0], kv[1]); !errors.Is(err, ErrInvalid) {
			t.Errorf("Set(%q, %q) error = %v, want ErrInvalid", kv[0], kv[1], err)
		}
	}
	if _, err := os.Stat(DefaultFile()); !errors.Is(err, os.ErrNotExist) {
		t.Error("rejected Set must not create a config file")
	}
}
