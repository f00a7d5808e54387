package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding maps a combination such as "Ctrl+Alt+Down" to an action.
type Binding struct {
	Combo  string
	Action func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type combo struct {
	text   string
	keys   []keyState
	action func()
}

// Listen registers all bindings on one global keyboard hook. Actions are
// invoked from the hook goroutine and must not block. Bindings that cannot
// be parsed are logged and skipped; an error is returned only when none
// remain.
func Listen(bindings []Binding) error {
	var combos []*combo
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" || b.Action == nil {
			continue
		}
		c, err := compile(b.Combo)
		if err != nil {
			log.Printf("ERROR: hotkey %q: %v", b.Combo, err)
			continue
		}
		c.action = b.Action
		combos = append(combos, c)
		log.Printf("Hotkey listener configured for: %s", b.Combo)
	}
	if len(combos) == 0 {
		return fmt.Errorf("no valid hotkeys configured")
	}

	go run(combos)
	return nil
}

func compile(text string) (*combo, error) {
	c := &combo{text: text}
	for _, name := range parseHotkey(text) {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("cannot map key %q to rawcodes", name)
		}
		c.keys = append(c.keys, keyState{name: name, rawcodes: rawcodes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("empty hotkey")
	}
	return c, nil
}

func run(combos []*combo) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey goroutine: %v", r)
		}
	}()

	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return
	}
	defer gohook.End()

	var mu sync.Mutex
	for ev := range evChan {
		// KeyHold is the physical press; KeyDown is the typed-character event,
		// which never fires for arrows or modifiers.
		if ev.Kind != gohook.KeyHold && ev.Kind != gohook.KeyUp {
			continue
		}
		mu.Lock()
		fired := handleEvent(combos, ev.Kind == gohook.KeyHold, ev.Rawcode)
		mu.Unlock()
		for _, c := range fired {
			log.Printf("Hotkey activated: %s", c.text)
			c.action()
		}
	}
	log.Printf("Event channel closed")
}

// handleEvent updates key states and returns the combos that became fully
// pressed. Only the triggering key is released on fire, so modifiers can be
// held while the final key is tapped repeatedly.
func handleEvent(combos []*combo, down bool, rawcode uint16) []*combo {
	var fired []*combo
	for _, c := range combos {
		matched := false
		for i := range c.keys {
			if containsCode(c.keys[i].rawcodes, rawcode) {
				c.keys[i].pressed = down
				matched = true
			}
		}
		if !down || !matched {
			continue
		}
		all := true
		for i := range c.keys {
			if !c.keys[i].pressed {
				all = false
				break
			}
		}
		if all {
			for i := range c.keys {
				if containsCode(c.keys[i].rawcodes, rawcode) {
					c.keys[i].pressed = false
				}
			}
			fired = append(fired, c)
		}
	}
	return fired
}

func containsCode(codes []uint16, code uint16) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "cmd", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var rawcodeTable = buildRawcodeTable()

func buildRawcodeTable() map[string][]uint16 {
	t := map[string][]uint16{
		// Modifiers: left and right variants
		"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
		"alt":   {164, 165}, // VK_LMENU, VK_RMENU
		"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
		"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

		"space":     {32},
		"enter":     {13},
		"return":    {13},
		"esc":       {27},
		"escape":    {27},
		"tab":       {9},
		"backspace": {8},
		"delete":    {46},
		"del":       {46},
		"insert":    {45},
		"ins":       {45},
		"home":      {36},
		"end":       {35},
		"pageup":    {33},
		"pgup":      {33},
		"pagedown":  {34},
		"pgdn":      {34},
		"left":      {37},
		"up":        {38},
		"right":     {39},
		"down":      {40},
		"plus":      {187, 107}, // VK_OEM_PLUS, VK_ADD
		"minus":     {189, 109}, // VK_OEM_MINUS, VK_SUBTRACT
	}
	for c := 'a'; c <= 'z'; c++ {
		t[string(c)] = []uint16{uint16(c - 'a' + 65)}
	}
	for d := 0; d <= 9; d++ {
		t[fmt.Sprint(d)] = []uint16{uint16(48 + d)}
	}
	for f := 1; f <= 24; f++ {
		t[fmt.Sprintf("f%d", f)] = []uint16{uint16(111 + f)} // VK_F1 = 112
	}
	return t
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	codes, ok := rawcodeTable[strings.ToLower(strings.TrimSpace(keyName))]
	if !ok {
		log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
		return nil
	}
	return codes
}
