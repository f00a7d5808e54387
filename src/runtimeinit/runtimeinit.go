package runtimeinit

import (
	"fmt"
	"log"
	"path/filepath"

	"screen-dimmer/src/config"
	"screen-dimmer/src/dimmer"
	"screen-dimmer/src/overlay"
	"screen-dimmer/src/state"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enable bool, dir string)
	// Opener defaults to overlay.NewOpener().
	Opener overlay.Opener
	// Bounds defaults to overlay.MonitorBounds for the configured monitor.
	Bounds dimmer.BoundsFunc
}

// Runtime is everything the resident needs after bootstrap.
type Runtime struct {
	Config     *config.Config
	Controller *dimmer.Controller
	State      *state.Store
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, filepath.Dir(cfg.StateFile))
	}

	opener := opts.Opener
	if opener == nil {
		opener = overlay.NewOpener()
	}
	bounds := opts.Bounds
	if bounds == nil {
		monitor := cfg.Monitor
		bounds = func() (overlay.Bounds, error) { return overlay.MonitorBounds(monitor) }
	}

	ctrl := dimmer.New(opener, dimmer.Options{Bounds: bounds, MaxOpacity: cfg.MaxOpacity})
	store := state.NewStore(cfg.StateFile)
	ctrl.OnChange(func(v float64) {
		if err := store.Save(v); err != nil {
			log.Printf("state: %v", err)
		}
	})

	log.Printf("Screen Dimmer initialized: monitor=%d max_opacity=%.0f%% step=%.1f%% state=%s",
		cfg.Monitor, cfg.MaxOpacity, cfg.StepPercent, cfg.StateFile)

	return &Runtime{Config: cfg, Controller: ctrl, State: store}, nil
}

// InitialBrightness picks the brightness to apply at startup: an explicit
// value wins, then the persisted one when RESTORE_ON_START is set. ok is
// false when the overlay should not be created at startup.
func (r *Runtime) InitialBrightness(explicit *float64) (float64, bool) {
	if explicit != nil {
		return *explicit, true
	}
	if !r.Config.RestoreOnStart {
		return 0, false
	}
	snap, ok, err := r.State.Load()
	if err != nil {
		log.Printf("state: %v; starting undimmed", err)
		return 0, false
	}
	if !ok || snap.Brightness >= dimmer.MaxBrightness {
		return 0, false
	}
	log.Printf("state: restoring brightness %.2f saved %s", snap.Brightness, snap.UpdatedAt.Format("2006-01-02 15:04"))
	return snap.Brightness, true
}
