package main

import (
	"testing"

	"screen-dimmer/src/config"
	"screen-dimmer/src/eventloop"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-dimmer", "-brightness", "40", "-monitor", "1"},
			out:  []string{"screen-dimmer", "--brightness", "40", "--monitor", "1"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-dimmer", "-max-opacity=80", "-state-file=/tmp/s.env"},
			out:  []string{"screen-dimmer", "--max-opacity=80", "--state-file=/tmp/s.env"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screen-dimmer", "--brightness", "20", "-h"},
			out:  []string{"screen-dimmer", "--brightness", "20", "-h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--brightness", "35", "--monitor", "2", "--state-file", "/tmp/s.env"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.brightness != 35 {
		t.Fatalf("Expected brightness=35, got %v", opts.brightness)
	}
	if !cmd.Flags().Changed("brightness") {
		t.Fatal("Expected brightness to be marked as changed")
	}
	if opts.monitor != 2 {
		t.Fatalf("Expected monitor=2, got %d", opts.monitor)
	}
	if opts.stateFile != "/tmp/s.env" {
		t.Fatalf("Expected stateFile=/tmp/s.env, got %q", opts.stateFile)
	}
}

func TestMainOptionsOverrides(t *testing.T) {
	opts := mainOptions{monitor: -1}
	lo := opts.loadOptions()
	if lo.MonitorOverride != nil || lo.MaxOpacityOverride != nil {
		t.Fatal("Expected no overrides by default")
	}
	if opts.initialBrightness() != nil {
		t.Fatal("Expected no explicit brightness")
	}

	opts = mainOptions{monitor: 1, maxOpacity: 70, maxOpacitySet: true, brightness: 25, brightnessSet: true}
	lo = opts.loadOptions()
	if lo.MonitorOverride == nil || *lo.MonitorOverride != 1 {
		t.Fatalf("Expected monitor override 1, got %v", lo.MonitorOverride)
	}
	if lo.MaxOpacityOverride == nil || *lo.MaxOpacityOverride != 70 {
		t.Fatalf("Expected max opacity override 70, got %v", lo.MaxOpacityOverride)
	}
	if b := opts.initialBrightness(); b == nil || *b != 25 {
		t.Fatalf("Expected explicit brightness 25, got %v", b)
	}
}

func TestHotkeyBindings(t *testing.T) {
	cfg := &config.Config{HotkeyDimmer: "Ctrl+Alt+Down", HotkeyBrighter: "Ctrl+Alt+Up", HotkeyOff: ""}
	loop := eventloop.New(nil, eventloop.Options{})
	bindings := hotkeyBindings(cfg, loop)
	if len(bindings) != 3 {
		t.Fatalf("Expected 3 bindings, got %d", len(bindings))
	}
	if bindings[0].Combo != "Ctrl+Alt+Down" || bindings[1].Combo != "Ctrl+Alt+Up" {
		t.Fatalf("Unexpected combos: %q %q", bindings[0].Combo, bindings[1].Combo)
	}
	for _, b := range bindings {
		b.Action()
	}
}
