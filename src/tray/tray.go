package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// ActionKind identifies what the user picked in the tray menu.
type ActionKind int

const (
	ActionSetBrightness ActionKind = iota
	ActionTurnOff
)

// Action is delivered to Config.OnAction from the tray goroutine.
type Action struct {
	Kind    ActionKind
	Percent float64
}

type Config struct {
	Title    string
	Tooltip  string
	Presets  []float64
	OnAction func(Action)
	OnExit   func()
}

type preset struct {
	percent float64
	item    *systray.MenuItem
}

// Tray is the notification-area icon with brightness presets.
type Tray struct {
	cfg        Config
	mu         sync.Mutex
	ready      bool
	brightness float64
	presets    []preset
	status     *systray.MenuItem
	quitOnce   sync.Once
}

func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "Screen Dimmer"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg, brightness: 100}
}

// Run blocks until the tray is destroyed.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconICO())
	systray.SetTitle(t.cfg.Title)

	status := systray.AddMenuItem("", "Current brightness")
	status.Disable()
	systray.AddSeparator()

	var presets []preset
	for _, p := range t.cfg.Presets {
		item := systray.AddMenuItemCheckbox(presetLabel(p), fmt.Sprintf("Set brightness to %s", formatPercent(p)), false)
		presets = append(presets, preset{percent: p, item: item})
	}
	systray.AddSeparator()
	mOff := systray.AddMenuItem("Turn off dimming", "Remove the overlay")
	mExit := systray.AddMenuItem("Exit", "Quit Screen Dimmer")

	t.mu.Lock()
	t.ready = true
	t.status = status
	t.presets = presets
	current := t.brightness
	t.mu.Unlock()
	t.UpdateBrightness(current)

	for _, p := range presets {
		go t.watchPreset(p)
	}
	go func() {
		for {
			select {
			case <-mOff.ClickedCh:
				t.emit(Action{Kind: ActionTurnOff})
			case <-mExit.ClickedCh:
				log.Printf("tray: exit requested")
				if t.cfg.OnExit != nil {
					t.cfg.OnExit()
				}
				return
			}
		}
	}()
	log.Printf("tray: ready with %d presets", len(presets))
}

func (t *Tray) watchPreset(p preset) {
	for range p.item.ClickedCh {
		t.emit(Action{Kind: ActionSetBrightness, Percent: p.percent})
	}
}

func (t *Tray) emit(a Action) {
	if t.cfg.OnAction != nil {
		t.cfg.OnAction(a)
	}
}

func (t *Tray) onExit() {}

// UpdateBrightness refreshes the tooltip, status line and preset check marks.
// It may be called before the tray is ready; the value is applied on ready.
func (t *Tray) UpdateBrightness(percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.brightness = percent
	if !t.ready {
		return
	}
	text := StatusText(percent)
	systray.SetTooltip(fmt.Sprintf("%s - %s", t.cfg.Tooltip, text))
	t.status.SetTitle(text)
	for _, p := range t.presets {
		if p.percent == percent {
			p.item.Check()
		} else {
			p.item.Uncheck()
		}
	}
}

// Destroy removes the icon. Safe to call more than once.
func (t *Tray) Destroy() {
	t.quitOnce.Do(systray.Quit)
}

// StatusText describes the brightness for menus and tooltips.
func StatusText(percent float64) string {
	if percent >= 100 {
		return "Brightness 100% (no dimming)"
	}
	return fmt.Sprintf("Brightness %s", formatPercent(percent))
}

func presetLabel(p float64) string {
	if p >= 100 {
		return "100% (no dimming)"
	}
	return formatPercent(p)
}

func formatPercent(p float64) string {
	if p == float64(int(p)) {
		return fmt.Sprintf("%d%%", int(p))
	}
	return fmt.Sprintf("%.1f%%", p)
}
