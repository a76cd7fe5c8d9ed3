package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/nodefs/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func load(t *testing.T, in config.LoadInput) (config.Config, error) {
	t.Helper()

	if in.Env == nil {
		in.Env = map[string]string{}
	}

	return config.Load(in)
}

func Test_Load_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := config.Default()
	want.EffectiveCwd = dir

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	if got, want := cfg.PollInterval(), 5007*time.Millisecond; got != want {
		t.Fatalf("PollInterval()=%v, want %v", got, want)
	}

	if got, want := cfg.Level(), logrus.WarnLevel; got != want {
		t.Fatalf("Level()=%v, want %v", got, want)
	}
}

func Test_Load_Layers_Global_Project_And_Overrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "nodefs", "config.json"), `{
		// global defaults
		"poll_interval_ms": 100,
		"log_level": "info",
		"atomic_writes": true,
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"poll_interval_ms": 250, "encoding": "latin1"}`)

	cfg, err := load(t, config.LoadInput{
		WorkDirOverride: dir,
		Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
		Overrides:       config.Overrides{LogLevel: "debug"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.PollIntervalMs, 250; got != want {
		t.Fatalf("PollIntervalMs=%d, want %d", got, want)
	}

	if got, want := cfg.Encoding, "latin1"; got != want {
		t.Fatalf("Encoding=%q, want %q", got, want)
	}

	if !cfg.AtomicWrites {
		t.Fatal("AtomicWrites=false, want true from global config")
	}

	if got, want := cfg.LogLevel, "debug"; got != want {
		t.Fatalf("LogLevel=%q, want %q", got, want)
	}

	if cfg.Sources.Global == "" || cfg.Sources.Project != filepath.Join(dir, config.FileName) {
		t.Fatalf("Sources=%+v", cfg.Sources)
	}
}

func Test_Load_Project_File_Can_Reset_Global_Bool(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "nodefs", "config.json"), `{"atomic_writes": true}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"atomic_writes": false}`)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AtomicWrites {
		t.Fatal("AtomicWrites=true, want false from project config")
	}
}

func Test_Load_Explicit_Config_Replaces_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, config.FileName), `{"high_water_mark": 1}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"chaos": {"seed": 7, "read_fail_rate": 0.5}}`)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: "custom.json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := cfg.HighWaterMark, config.Default().HighWaterMark; got != want {
		t.Fatalf("HighWaterMark=%d, want default %d", got, want)
	}

	if cfg.Chaos == nil || cfg.Chaos.Seed != 7 || cfg.Chaos.FSChaos().ReadFailRate != 0.5 {
		t.Fatalf("Chaos=%+v", cfg.Chaos)
	}
}

func Test_Load_Returns_Error_When_Explicit_Config_Missing(t *testing.T) {
	t.Parallel()

	_, err := load(t, config.LoadInput{WorkDirOverride: t.TempDir(), ConfigPath: "nope.json"})
	if !errors.Is(err, config.ErrConfigFileNotFound) {
		t.Fatalf("err=%v, want ErrConfigFileNotFound", err)
	}
}

func Test_Load_Returns_ConfigInvalid_When_Values_Bad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `{"poll_interval_ms": }`, "invalid JSONC"},
		{"unknown key", `{"ticket_dir": "x"}`, "unknown field"},
		{"wrong type", `{"poll_interval_ms": "fast"}`, "invalid JSON"},
		{"zero interval", `{"poll_interval_ms": 0}`, "poll_interval_ms must be > 0"},
		{"negative hwm", `{"high_water_mark": -1}`, "high_water_mark must be > 0"},
		{"encoding", `{"encoding": "ebcdic"}`, `unknown encoding "ebcdic"`},
		{"log level", `{"log_level": "loud"}`, "log_level"},
		{"chaos rate", `{"chaos": {"write_fail_rate": 1.5}}`, "chaos.write_fail_rate"},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, config.FileName), tt.content)

		_, err := load(t, config.LoadInput{WorkDirOverride: dir})
		if !errors.Is(err, config.ErrConfigInvalid) {
			t.Fatalf("%s: err=%v, want ErrConfigInvalid", tt.name, err)
		}

		if !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: err=%q, want it to contain %q", tt.name, err, tt.want)
		}
	}
}

func Test_Format_Omits_Resolved_Fields(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.EffectiveCwd = "/somewhere"

	out, err := config.Format(cfg)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	if strings.Contains(out, "somewhere") || strings.Contains(out, "chaos") {
		t.Fatalf("Format leaked resolved or empty fields:\n%s", out)
	}

	if !strings.Contains(out, `"poll_interval_ms": 5007`) {
		t.Fatalf("Format output missing poll_interval_ms:\n%s", out)
	}
}

func Test_ChaosConfig_Converts_Every_Rate(t *testing.T) {
	t.Parallel()

	c := config.ChaosConfig{
		OpenFailRate: 0.1, ReadFailRate: 0.2, PartialReadRate: 0.3, WriteFailRate: 0.4,
		PartialWriteRate: 0.5, StatFailRate: 0.6, ReadDirFailRate: 0.7, SyncFailRate: 0.8,
		CloseFailRate: 0.9, MutateFailRate: 1,
	}

	got := c.FSChaos()

	want := []float64{
		got.OpenFailRate, got.ReadFailRate, got.PartialReadRate, got.WriteFailRate,
		got.PartialWriteRate, got.StatFailRate, got.ReadDirFailRate, got.SyncFailRate,
		got.CloseFailRate, got.MutateFailRate,
	}

	if diff := cmp.Diff([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}, want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("rates mismatch (-want +got):\n%s", diff)
	}
}
