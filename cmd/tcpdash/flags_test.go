package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ekmektech/tcpdumpdashboard/internal/config"
	"github.com/ekmektech/tcpdumpdashboard/internal/ui"
)

func mustParse(t *testing.T, args ...string) *cliFlags {
	t.Helper()
	f, err := parseFlags("tcpdash", args, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags(%v): %v", args, err)
	}
	return f
}

func TestApplyFlags_NothingSetKeepsDefaults(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, mustParse(t))

	if cfg.Display.Refresh.Duration != 2*time.Second {
		t.Errorf("refresh = %v, want 2s", cfg.Display.Refresh.Duration)
	}
	if cfg.Display.Lines != 20 {
		t.Errorf("lines = %d, want 20", cfg.Display.Lines)
	}
	if cfg.Display.Sorted || cfg.Output.KeepLog || cfg.Output.File != "" {
		t.Errorf("unexpected non-default values: %+v", cfg)
	}
}

func TestApplyFlags_ShortAndLongForms(t *testing.T) {
	cases := [][]string{
		{"-r", "5", "-l", "7", "-s", "-k", "-f", "/tmp/out.txt", "-u", "/etc/hosts"},
		{"--refresh", "5", "--lines", "7", "--sorted", "--keeplog", "--tofile", "/tmp/out.txt", "--hosts", "/etc/hosts"},
	}
	for _, args := range cases {
		cfg := config.Default()
		applyFlags(cfg, mustParse(t, args...))

		if cfg.Display.Refresh.Duration != 5*time.Second {
			t.Errorf("%v: refresh = %v", args, cfg.Display.Refresh.Duration)
		}
		if cfg.Display.Lines != 7 {
			t.Errorf("%v: lines = %d", args, cfg.Display.Lines)
		}
		if !cfg.Display.Sorted {
			t.Errorf("%v: sorted not applied", args)
		}
		if !cfg.Output.KeepLog {
			t.Errorf("%v: keeplog not applied", args)
		}
		if cfg.Output.File != "/tmp/out.txt" {
			t.Errorf("%v: file = %q", args, cfg.Output.File)
		}
		if cfg.Display.Hosts != "/etc/hosts" {
			t.Errorf("%v: hosts = %q", args, cfg.Display.Hosts)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	for _, arg := range []string{"-v", "--version"} {
		if f := mustParse(t, arg); !f.version {
			t.Errorf("%s: version not set", arg)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tcpdash.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_CLIOverridesFile(t *testing.T) {
	path := writeConfig(t, `
capture:
  interface: eth1
display:
  refresh: 10s
  lines: 50
  sorted: true
output:
  file: /var/tmp/dash.txt
metrics:
  addr: ":9102"
`)

	cfg, err := loadConfig(mustParse(t, "-c", path, "-l", "5", "--listen", ":9200"))
	if err != nil {
		t.Fatal(err)
	}

	// From file.
	if cfg.Capture.Interface != "eth1" {
		t.Errorf("interface = %q, want eth1", cfg.Capture.Interface)
	}
	if cfg.Display.Refresh.Duration != 10*time.Second {
		t.Errorf("refresh = %v, want 10s", cfg.Display.Refresh.Duration)
	}
	if !cfg.Display.Sorted {
		t.Error("sorted from file lost")
	}
	if cfg.Output.File != "/var/tmp/dash.txt" {
		t.Errorf("file = %q", cfg.Output.File)
	}

	// From CLI.
	if cfg.Display.Lines != 5 {
		t.Errorf("lines = %d, want 5", cfg.Display.Lines)
	}
	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("metrics addr = %q, want :9200", cfg.Metrics.Addr)
	}
}

func TestLoadConfig_RejectsZeroRefresh(t *testing.T) {
	if _, err := loadConfig(mustParse(t, "-r", "0")); err == nil {
		t.Fatal("expected error for zero refresh")
	}
	if _, err := loadConfig(mustParse(t, "-l", "-1")); err == nil {
		t.Fatal("expected error for negative lines")
	}
}

func TestUIMode(t *testing.T) {
	if m := uiMode(config.OutputConfig{Quiet: true, NoTUI: true}); m != ui.ModeSilent {
		t.Errorf("quiet: mode = %v, want silent", m)
	}
	if m := uiMode(config.OutputConfig{NoTUI: true}); m != ui.ModeText {
		t.Errorf("no-tui: mode = %v, want text", m)
	}
}

func TestLoadConfig_FlagFixesInvalidFileValue(t *testing.T) {
	path := writeConfig(t, "display:\n  lines: 0\n")

	if _, err := loadConfig(mustParse(t, "-c", path)); err == nil {
		t.Fatal("expected error for lines: 0 without override")
	}
	cfg, err := loadConfig(mustParse(t, "-c", path, "-l", "10"))
	if err != nil {
		t.Fatalf("-l 10 should override lines: 0, got %v", err)
	}
	if cfg.Display.Lines != 10 {
		t.Fatalf("lines = %d, want 10", cfg.Display.Lines)
	}
}

func TestParseExitCode(t *testing.T) {
	if _, err := parseFlags("tcpdash", []string{"-h"}, io.Discard); parseExitCode(err) != 0 {
		t.Errorf("-h: exit %d, want 0", parseExitCode(err))
	}
	for _, args := range [][]string{{"--no-such-flag"}, {"-r", "soon"}} {
		_, err := parseFlags("tcpdash", args, io.Discard)
		if err == nil {
			t.Fatalf("%v: expected parse error", args)
		}
		if code := parseExitCode(err); code != 1 {
			t.Errorf("%v: exit %d, want 1", args, code)
		}
	}
}
