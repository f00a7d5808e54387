package tray

import (
	"encoding/binary"
	"testing"
)

func TestIconICOHeader(t *testing.T) {
	ico := iconICO()
	if want := 6 + 16 + 40 + 16*16*4 + 16*4; len(ico) != want {
		t.Fatalf("icon size = %d, want %d", len(ico), want)
	}
	if typ := binary.LittleEndian.Uint16(ico[2:4]); typ != 1 {
		t.Errorf("ICONDIR type = %d, want 1", typ)
	}
	if n := binary.LittleEndian.Uint16(ico[4:6]); n != 1 {
		t.Errorf("image count = %d, want 1", n)
	}
	if ico[6] != 16 || ico[7] != 16 {
		t.Errorf("entry size = %dx%d", ico[6], ico[7])
	}
	if off := binary.LittleEndian.Uint32(ico[18:22]); off != 22 {
		t.Errorf("image offset = %d, want 22", off)
	}
	// corner pixel is transparent, centre-left pixel opaque
	pixels := ico[22+40:]
	if pixels[3] != 0 {
		t.Errorf("corner alpha = %d, want 0", pixels[3])
	}
	row, col := 8, 4
	if a := pixels[(row*16+col)*4+3]; a != 0xFF {
		t.Errorf("disc alpha = %d, want 255", a)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "Brightness 100% (no dimming)"},
		{40, "Brightness 40%"},
		{12.5, "Brightness 12.5%"},
		{0, "Brightness 0%"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.in); got != tt.want {
			t.Errorf("StatusText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpdateBeforeReadyIsStored(t *testing.T) {
	tr := New(Config{Presets: []float64{100, 50}})
	tr.UpdateBrightness(50)
	if tr.brightness != 50 {
		t.Errorf("brightness = %v, want 50", tr.brightness)
	}
	if tr.cfg.Title != "Screen Dimmer" {
		t.Errorf("default title = %q", tr.cfg.Title)
	}
}
