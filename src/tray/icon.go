package tray

import (
	"bytes"
	"encoding/binary"
)

const iconSize = 16

// iconICO renders the tray icon as a 16x16 32-bit ICO: a disc whose left half
// is lit and right half shaded.
func iconICO() []byte {
	const (
		headerSize = 6 + 16
		infoSize   = 40
		pixelBytes = iconSize * iconSize * 4
		maskBytes  = iconSize * 4 // 1bpp rows padded to 32 bits
	)
	var buf bytes.Buffer
	le := binary.LittleEndian

	// ICONDIR
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{iconSize, iconSize, 0, 0})
	_ = binary.Write(&buf, le, uint16(1))  // planes
	_ = binary.Write(&buf, le, uint16(32)) // bpp
	_ = binary.Write(&buf, le, uint32(infoSize+pixelBytes+maskBytes))
	_ = binary.Write(&buf, le, uint32(headerSize))

	// BITMAPINFOHEADER; height covers XOR and AND masks
	_ = binary.Write(&buf, le, uint32(infoSize))
	_ = binary.Write(&buf, le, int32(iconSize))
	_ = binary.Write(&buf, le, int32(iconSize*2))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(32))
	_ = binary.Write(&buf, le, [6]uint32{0, pixelBytes, 0, 0, 0, 0})

	// BGRA pixels, bottom-up
	const c, r2 = 7.5, 7.0 * 7.0
	for y := iconSize - 1; y >= 0; y-- {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			switch {
			case dx*dx+dy*dy > r2:
				buf.Write([]byte{0, 0, 0, 0})
			case dx < 0:
				buf.Write([]byte{0x40, 0xD0, 0xFF, 0xFF}) // warm yellow
			default:
				buf.Write([]byte{0x50, 0x40, 0x30, 0xFF}) // dim slate
			}
		}
	}
	// AND mask all zero; alpha channel carries transparency
	buf.Write(make([]byte, maskBytes))
	return buf.Bytes()
}
