package runtimeinit

import (
	"path/filepath"
	"testing"

	"screen-dimmer/src/config"
	"screen-dimmer/src/overlay"
)

type nopWindow struct{}

func (nopWindow) SetAlpha(uint8) error { return nil }
func (nopWindow) Close() error         { return nil }

func testOptions(t *testing.T, stateFile string) Options {
	t.Helper()
	chdirForTest(t, t.TempDir())
	return Options{
		LoadOptions: config.LoadOptions{StateFileOverride: stateFile},
		Opener: overlay.OpenerFunc(func(overlay.Bounds, uint8) (overlay.Window, error) {
			return nopWindow{}, nil
		}),
		Bounds: func() (overlay.Bounds, error) { return overlay.Bounds{Width: 10, Height: 10}, nil },
	}
}

func TestBootstrapPersistsChanges(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.env")
	var loggingDir string
	opts := testOptions(t, stateFile)
	opts.SetupLogging = func(enable bool, dir string) { loggingDir = dir }

	rt, err := Bootstrap(opts)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if loggingDir != filepath.Dir(stateFile) {
		t.Errorf("logging dir = %q", loggingDir)
	}
	if err := rt.Controller.SetOverlayBrightness(35); err != nil {
		t.Fatal(err)
	}
	snap, ok, err := rt.State.Load()
	if err != nil || !ok || snap.Brightness != 35 {
		t.Fatalf("persisted snapshot = %+v ok=%v err=%v", snap, ok, err)
	}

	got, ok := rt.InitialBrightness(nil)
	if !ok || got != 35 {
		t.Errorf("InitialBrightness = %v, %v; want 35, true", got, ok)
	}
}

func TestInitialBrightnessExplicitWins(t *testing.T) {
	rt, err := Bootstrap(testOptions(t, filepath.Join(t.TempDir(), "state.env")))
	if err != nil {
		t.Fatal(err)
	}
	v := 60.0
	got, ok := rt.InitialBrightness(&v)
	if !ok || got != 60 {
		t.Errorf("InitialBrightness = %v, %v; want 60, true", got, ok)
	}
}

func TestInitialBrightnessNothingSaved(t *testing.T) {
	rt, err := Bootstrap(testOptions(t, filepath.Join(t.TempDir(), "state.env")))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.InitialBrightness(nil); ok {
		t.Error("expected no startup overlay without saved state")
	}
}

func TestInitialBrightnessRestoreDisabled(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.env")
	t.Setenv("RESTORE_ON_START", "false")
	rt, err := Bootstrap(testOptions(t, stateFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.State.Save(20); err != nil {
		t.Fatal(err)
	}
	if _, ok := rt.InitialBrightness(nil); ok {
		t.Error("expected restore to be skipped")
	}
}

func TestBrightnessRestoredAfterCleanExit(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.env")
	opts := testOptions(t, stateFile)

	rt, err := Bootstrap(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Controller.SetOverlayBrightness(35); err != nil {
		t.Fatal(err)
	}
	if err := rt.Controller.Close(); err != nil {
		t.Fatal(err)
	}

	next, err := Bootstrap(opts)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := next.InitialBrightness(nil)
	if !ok || got != 35 {
		t.Errorf("InitialBrightness after restart = %v, %v; want 35, true", got, ok)
	}
}

func TestTurningOffIsRemembered(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state.env")
	opts := testOptions(t, stateFile)

	rt, err := Bootstrap(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Controller.SetOverlayBrightness(35); err != nil {
		t.Fatal(err)
	}
	if err := rt.Controller.DestroyOverlay(); err != nil {
		t.Fatal(err)
	}
	if err := rt.Controller.Close(); err != nil {
		t.Fatal(err)
	}

	next, err := Bootstrap(opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.InitialBrightness(nil); ok {
		t.Error("expected no startup overlay after the user turned dimming off")
	}
}
