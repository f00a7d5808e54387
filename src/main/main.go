package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screen-dimmer/src/config"
	"screen-dimmer/src/dimmer"
	"screen-dimmer/src/eventloop"
	"screen-dimmer/src/hotkey"
	"screen-dimmer/src/logutil"
	"screen-dimmer/src/notification"
	"screen-dimmer/src/runtimeinit"
	"screen-dimmer/src/singleinstance"
	"screen-dimmer/src/tray"
)

type mainOptions struct {
	brightness    float64
	brightnessSet bool
	monitor       int
	maxOpacity    float64
	maxOpacitySet bool
	stateFile     string
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-dimmer",
		Short:         "Dim a monitor with a translucent overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.brightnessSet = cmd.Flags().Changed("brightness")
			opts.maxOpacitySet = cmd.Flags().Changed("max-opacity")
			return runResident(*opts)
		},
	}

	cmd.Flags().Float64Var(&opts.brightness, "brightness", 100, "Brightness to apply at startup (0-100, 100 = no dimming)")
	cmd.Flags().IntVar(&opts.monitor, "monitor", -1, "Display index to dim (overrides MONITOR)")
	cmd.Flags().Float64Var(&opts.maxOpacity, "max-opacity", 100, "Maximum overlay opacity in percent (overrides MAX_OPACITY)")
	cmd.Flags().StringVar(&opts.stateFile, "state-file", "", "Path of the persisted state file (overrides STATE_FILE)")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-brightness) to the
// double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		for _, name := range []string{"brightness", "monitor", "max-opacity", "state-file"} {
			arg := normalized[i]
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
			}
		}
	}
	return normalized
}

func (o mainOptions) loadOptions() config.LoadOptions {
	lo := config.LoadOptions{StateFileOverride: o.stateFile}
	if o.monitor >= 0 {
		m := o.monitor
		lo.MonitorOverride = &m
	}
	if o.maxOpacitySet {
		v := o.maxOpacity
		lo.MaxOpacityOverride = &v
	}
	return lo
}

func (o mainOptions) initialBrightness() *float64 {
	if !o.brightnessSet {
		return nil
	}
	v := o.brightness
	return &v
}

func runResident(opts mainOptions) error {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// Lock main goroutine to its own OS thread so it never shares a message
	// queue with the overlay or tray threads.
	runtime.LockOSThread()

	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.Load()
	if err := preflight(); err != nil {
		return err
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  opts.loadOptions(),
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		notification.ShowBlockingError("Screen Dimmer", err.Error())
		return err
	}
	logMonitorConfiguration()

	cfg := rt.Config
	loop := eventloop.New(rt.Controller, eventloop.Options{StepPercent: cfg.StepPercent})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trayIcon := tray.New(tray.Config{
		Title:   "Screen Dimmer",
		Tooltip: "Screen Dimmer",
		Presets: cfg.Presets,
		OnAction: func(a tray.Action) {
			switch a.Kind {
			case tray.ActionTurnOff:
				loop.Post(eventloop.Action{Kind: eventloop.ActionOff})
			default:
				loop.Post(eventloop.Action{Kind: eventloop.ActionSet, Percent: a.Percent})
			}
		},
		OnExit: cancel,
	})
	rt.Controller.OnChange(trayIcon.UpdateBrightness)
	go trayIcon.Run()
	defer trayIcon.Destroy()

	if err := hotkey.Listen(hotkeyBindings(cfg, loop)); err != nil {
		log.Printf("Hotkeys disabled: %v", err)
	}

	if v, ok := rt.InitialBrightness(opts.initialBrightness()); ok {
		if err := rt.Controller.SetOverlayBrightness(v); err != nil {
			log.Printf("Initial brightness %.1f%% not applied: %v", v, err)
			if errors.Is(err, dimmer.ErrOverlayCreationFailed) {
				// Keep running; tray, hotkeys and IPC can retry later.
				go notification.ShowBlockingError("Screen Dimmer", err.Error())
			}
		}
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	err = loop.Run(ctx)
	// Close, not DestroyOverlay: the saved brightness must survive exit.
	if derr := rt.Controller.Close(); derr != nil {
		log.Printf("shutdown: %v", derr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	log.Printf("Screen Dimmer exiting")
	return nil
}

func hotkeyBindings(cfg *config.Config, loop *eventloop.Loop) []hotkey.Binding {
	post := func(kind eventloop.ActionKind) func() {
		return func() { loop.Post(eventloop.Action{Kind: kind}) }
	}
	return []hotkey.Binding{
		{Combo: cfg.HotkeyDimmer, Action: post(eventloop.ActionDimmer)},
		{Combo: cfg.HotkeyBrighter, Action: post(eventloop.ActionBrighter)},
		{Combo: cfg.HotkeyOff, Action: post(eventloop.ActionOff)},
	}
}

// preflight refuses to start a second resident.
func preflight() error {
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if port, ok := singleinstance.DetectResidentPort(ctx); ok {
			return fmt.Errorf("screen dimmer is already running on port %d", port)
		}
		return fmt.Errorf("control port %d is busy: %w", startPort, err)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free", startPort)
	return nil
}
