package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/config"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("swimlog %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRecordAndReport(t *testing.T) {
	dir := setupEnv(t)

	out := mustRun(t, "meet", "add", "--name", "Spring Open", "--course", "SCY", "--start", "2024-03-01", "--end", "2024-03-03")
	if !strings.Contains(out, "Added meet #1: Spring Open") {
		t.Fatalf("unexpected meet add output: %q", out)
	}

	out = mustRun(t, "add", "--event", "100 free", "--time", "1:02.34", "--meet", "1", "--date", "2024-03-02")
	if !strings.Contains(out, "Recorded #1: 100 Free SCY 1:02.34") || !strings.Contains(out, "First swim") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out = mustRun(t, "add", "--event", "100 free", "--time", "1:01.00", "--course", "SCY", "--date", "2024-04-01")
	if !strings.Contains(out, "New personal best (-1.34)") {
		t.Fatalf("expected new personal best, got %q", out)
	}

	if _, err := run(t, "add", "--event", "100 free", "--time", "1:01.00", "--meet", "1", "--date", "2024-05-01"); err == nil {
		t.Fatalf("expected error for date outside meet")
	}

	csvPath := filepath.Join(dir, "std.csv")
	csv := "set,name,event,course,gender,age_min,age_max,time\n" +
		"Age Group,A,100 free,SCY,X,,,1:01.19\n" +
		"Age Group,AA,100 free,SCY,X,,,58.00\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out = mustRun(t, "standards", "import", csvPath)
	if !strings.Contains(out, "Imported 2 standards") {
		t.Fatalf("unexpected import output: %q", out)
	}

	out = mustRun(t, "compare")
	for _, want := range []string{"achieved", "not yet", "Next targets", "holds A, next AA 58.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("compare output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "pbs")
	if !strings.Contains(out, "Free") || !strings.Contains(out, "1:01.00") || strings.Contains(out, "1:02.34") {
		t.Fatalf("unexpected pbs output:\n%s", out)
	}

	out = mustRun(t, "results", "--last", "1")
	if !strings.Contains(out, "1:01.00") || strings.Contains(out, "1:02.34") {
		t.Fatalf("unexpected results output:\n%s", out)
	}

	out = mustRun(t, "progress", "100", "free", "--width", "80", "--height", "6")
	if !strings.Contains(out, "100 Free (SCY)") || !strings.Contains(out, "2 swims") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}

	mustRun(t, "meet", "rm", "1")
	out = mustRun(t, "results")
	if strings.Contains(out, "1:02.34") || !strings.Contains(out, "1:01.00") {
		t.Fatalf("expected meet results to be removed:\n%s", out)
	}
	if _, err := run(t, "meet", "rm", "1"); err == nil {
		t.Fatalf("expected error removing a missing meet")
	}

	out = mustRun(t, "standards", "rm", "Age Group")
	if !strings.Contains(out, "Deleted 2 standards") {
		t.Fatalf("unexpected standards rm output: %q", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "add", "--event", "100 free", "--time", "1:75.00", "--course", "SCY")
	if err == nil || !strings.Contains(err.Error(), "time") {
		t.Fatalf("expected time validation error, got %v", err)
	}
}

func TestSessionCommands(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "whoami"); err == nil {
		t.Fatalf("expected whoami to fail when signed out")
	}
	out := mustRun(t, "login", "Alex", "Smith")
	if !strings.Contains(out, "Signed in as Alex Smith") {
		t.Fatalf("unexpected login output: %q", out)
	}
	out = mustRun(t, "whoami")
	if !strings.HasPrefix(out, "Alex Smith") {
		t.Fatalf("unexpected whoami output: %q", out)
	}
	out = mustRun(t, "logout")
	if !strings.Contains(out, "Signed out Alex Smith") {
		t.Fatalf("unexpected logout output: %q", out)
	}
	if _, err := run(t, "whoami"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestConfigFileAppliesUnlessFlagSet(t *testing.T) {
	setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[swimmer]\nname = \"Alex\"\ngender = \"F\"\nbirth-date = \"2012-04-03\"\ncourse = \"LCM\"\n\n[compare]\nthreshold = 5.0\nstandard-set = \"Open\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := &cobra.Command{Use: "test"}
	var f reportFlags
	bindReportFlags(cmd, &f, true)
	if err := cmd.ParseFlags([]string{"--threshold", "1.5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(cmd, &f)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ThresholdPercent != 1.5 {
		t.Fatalf("expected flag threshold to win, got %v", cfg.ThresholdPercent)
	}
	if cfg.StandardSet != "Open" || cfg.DefaultCourse != "LCM" || cfg.Swimmer.Name != "Alex" || cfg.Swimmer.Gender != "F" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Swimmer.BirthDate.Year() != 2012 {
		t.Fatalf("expected birth date, got %v", cfg.Swimmer.BirthDate)
	}
}

func TestLoadConfigWithoutThresholdFlag(t *testing.T) {
	setupEnv(t)
	cmd := newProgressCmd()
	var f reportFlags
	cfg, err := loadConfig(cmd, &f)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ThresholdPercent != compare.DefaultThresholdPercent {
		t.Fatalf("expected default threshold, got %v", cfg.ThresholdPercent)
	}

	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[compare]\nthreshold = 4.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = loadConfig(cmd, &f)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ThresholdPercent != 4.5 {
		t.Fatalf("expected config threshold, got %v", cfg.ThresholdPercent)
	}
}

func TestValidateSettings(t *testing.T) {
	if err := validateSettings(3, "scy", "f"); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}
	if err := validateSettings(101, "SCY", ""); err == nil {
		t.Fatalf("expected threshold error")
	}
	if err := validateSettings(3, "yards", ""); err == nil {
		t.Fatalf("expected course error")
	}
	if err := validateSettings(3, "SCY", "Q"); err == nil {
		t.Fatalf("expected gender error")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("write default config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("decode default config: %v", err)
	}
	if cfg.Swimmer.Name != nil || cfg.Compare.ThresholdPct != nil {
		t.Fatalf("expected all template values commented out, got %+v", cfg)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("#12"); err != nil || id != 12 {
		t.Fatalf("expected 12, got %d (%v)", id, err)
	}
	for _, in := range []string{"", "0", "-3", "abc"} {
		if _, err := parseID(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
