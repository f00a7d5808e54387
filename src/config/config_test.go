package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Monitor != 0 {
		t.Errorf("Expected Monitor 0, got %d", cfg.Monitor)
	}
	if cfg.MaxOpacity != 100 {
		t.Errorf("Expected MaxOpacity 100, got %v", cfg.MaxOpacity)
	}
	if cfg.StepPercent != 10 {
		t.Errorf("Expected StepPercent 10, got %v", cfg.StepPercent)
	}
	if cfg.HotkeyDimmer != "Ctrl+Alt+Down" || cfg.HotkeyBrighter != "Ctrl+Alt+Up" || cfg.HotkeyOff != "Ctrl+Alt+End" {
		t.Errorf("Unexpected default hotkeys: %q %q %q", cfg.HotkeyDimmer, cfg.HotkeyBrighter, cfg.HotkeyOff)
	}
	if !cfg.RestoreOnStart {
		t.Error("Expected RestoreOnStart to default to true")
	}
	if filepath.Base(cfg.StateFile) != DefaultStateFile {
		t.Errorf("Expected state file %s, got %s", DefaultStateFile, cfg.StateFile)
	}
	if len(cfg.Presets) != 5 || cfg.Presets[0] != 100 {
		t.Errorf("Unexpected default presets: %v", cfg.Presets)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("MONITOR", "2")
	t.Setenv("MAX_OPACITY", "85")
	t.Setenv("STEP_PERCENT", "5")
	t.Setenv("HOTKEY_OFF", "Ctrl+Shift+F12")
	t.Setenv("PRESETS", "90, 50%, bogus, 10")
	t.Setenv("RESTORE_ON_START", "false")
	t.Setenv("STATE_FILE", "/tmp/dimmer.env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.EnableFileLogging {
		t.Error("Expected EnableFileLogging to be true")
	}
	if cfg.Monitor != 2 {
		t.Errorf("Expected Monitor 2, got %d", cfg.Monitor)
	}
	if cfg.MaxOpacity != 85 {
		t.Errorf("Expected MaxOpacity 85, got %v", cfg.MaxOpacity)
	}
	if cfg.StepPercent != 5 {
		t.Errorf("Expected StepPercent 5, got %v", cfg.StepPercent)
	}
	if cfg.HotkeyOff != "Ctrl+Shift+F12" {
		t.Errorf("Expected HotkeyOff 'Ctrl+Shift+F12', got %q", cfg.HotkeyOff)
	}
	if len(cfg.Presets) != 3 || cfg.Presets[1] != 50 {
		t.Errorf("Unexpected presets: %v", cfg.Presets)
	}
	if cfg.RestoreOnStart {
		t.Error("Expected RestoreOnStart false")
	}
	if cfg.StateFile != "/tmp/dimmer.env" {
		t.Errorf("Expected state file override, got %q", cfg.StateFile)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	yaml := "max_opacity: 70\nstep_percent: 20\nhotkey_dimmer: Alt+F1\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STEP_PERCENT", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.MaxOpacity != 70 {
		t.Errorf("Expected MaxOpacity 70 from yaml, got %v", cfg.MaxOpacity)
	}
	if cfg.StepPercent != 15 {
		t.Errorf("Expected env to win over yaml, got %v", cfg.StepPercent)
	}
	if cfg.HotkeyDimmer != "Alt+F1" {
		t.Errorf("Expected HotkeyDimmer from yaml, got %q", cfg.HotkeyDimmer)
	}
}

func TestLoadWithOptionsOverrides(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("MONITOR", "1")
	t.Setenv("MAX_OPACITY", "50")

	monitor := 3
	maxOpacity := 150.0
	cfg, err := LoadWithOptions(LoadOptions{
		MonitorOverride:    &monitor,
		MaxOpacityOverride: &maxOpacity,
		StateFileOverride:  "state.env",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monitor != 3 {
		t.Errorf("Expected monitor override 3, got %d", cfg.Monitor)
	}
	if cfg.MaxOpacity != 100 {
		t.Errorf("Expected clamped max opacity 100, got %v", cfg.MaxOpacity)
	}
	if cfg.StateFile != "state.env" {
		t.Errorf("Expected state file override, got %q", cfg.StateFile)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("MONITOR", "-4")
	t.Setenv("MAX_OPACITY", "lots")
	t.Setenv("STEP_PERCENT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monitor != 0 {
		t.Errorf("Expected monitor fallback 0, got %d", cfg.Monitor)
	}
	if cfg.MaxOpacity != 100 {
		t.Errorf("Expected max opacity fallback 100, got %v", cfg.MaxOpacity)
	}
	if cfg.StepPercent != 0.1 {
		t.Errorf("Expected step clamped to 0.1, got %v", cfg.StepPercent)
	}
}

func TestParsePresets(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"", []float64{100, 80, 60, 40, 20}},
		{"75", []float64{75}},
		{"100, 50 ,50, 0", []float64{100, 50, 0}},
		{"-5,120,abc", []float64{100, 80, 60, 40, 20}},
	}
	for _, tt := range tests {
		got := ParsePresets(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParsePresets(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParsePresets(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
