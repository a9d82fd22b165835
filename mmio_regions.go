// mmio_regions.go - the device address map within [0xFF00_0000, 0xFF40_0000),
// wired into a Memory via Memory.MapIO. Bit-exact per SPEC_FULL.md/spec.md
// §6: two indexed framebuffers, a frame-select byte, keyboard control/data
// registers, and a 128-bit key-state bitmap.

package main

import "sync"

const (
	fb0Base = 0xFF000000
	fb1Base = 0xFF100000

	frameSelectAddr = 0xFF200604
	keyBitmapAddr   = 0xFF200520 // through 0xFF20052C, 16 bytes

	kbdCtrlAddr = 0xFF210000
	kbdDataAddr = 0xFF210004
)

// Framebuffer is one 8-bit indexed video page, guarded by its own RWMutex
// per SPEC_FULL.md's reader/writer discipline: the executor writes
// individual bytes, the display snapshots the whole buffer once a frame.
type Framebuffer struct {
	width, height int
	pixels        []byte
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{width: width, height: height, pixels: make([]byte, width*height)}
}

func (f *Framebuffer) size() int { return f.width * f.height }

// Display owns both framebuffers, the frame-select byte, and the keyboard
// state, and registers all of it with a Memory's MMIO table. This is the
// piece of state the executor (via ecall ClearScreen) and the display
// backend (display_backend.go's Game loop) both touch.
type Display struct {
	fb           [2]*Framebuffer
	frameSelect  byte
	keyBitmap    [16]byte
	kbdCtrl      byte
	kbdData      byte
	fbMu         [2]sync.RWMutex
}

func NewDisplay(width, height int) *Display {
	return &Display{
		fb: [2]*Framebuffer{
			NewFramebuffer(width, height),
			NewFramebuffer(width, height),
		},
	}
}

func (d *Display) Attach(mem *Memory) {
	for i := 0; i < 2; i++ {
		i := i
		base := uint32(fb0Base)
		if i == 1 {
			base = fb1Base
		}
		end := base + uint32(d.fb[i].size()) - 1
		mem.MapIO(base, end,
			func(addr uint32) byte {
				d.fbMu[i].RLock()
				defer d.fbMu[i].RUnlock()
				return d.fb[i].pixels[addr-base]
			},
			func(addr uint32, v byte) {
				d.fbMu[i].Lock()
				defer d.fbMu[i].Unlock()
				d.fb[i].pixels[addr-base] = v
			},
		)
	}

	mem.MapIO(frameSelectAddr, frameSelectAddr,
		func(uint32) byte { return d.frameSelect },
		func(_ uint32, v byte) { d.frameSelect = v },
	)

	mem.MapIO(keyBitmapAddr, keyBitmapAddr+15,
		func(addr uint32) byte { return d.keyBitmap[addr-keyBitmapAddr] },
		func(addr uint32, v byte) { d.keyBitmap[addr-keyBitmapAddr] = v },
	)

	mem.MapIO(kbdCtrlAddr, kbdCtrlAddr,
		func(uint32) byte { return d.kbdCtrl },
		func(_ uint32, v byte) { d.kbdCtrl = v },
	)

	mem.MapIO(kbdDataAddr, kbdDataAddr+3,
		func(addr uint32) byte {
			b := d.readKbdDataByte(addr - kbdDataAddr)
			if addr == kbdDataAddr {
				d.kbdCtrl &^= 1 // reading clears the data-ready flag
			}
			return b
		},
		func(addr uint32, v byte) { d.writeKbdDataByte(addr-kbdDataAddr, v) },
	)
}

func (d *Display) readKbdDataByte(off uint32) byte {
	if off == 0 {
		return d.kbdData
	}
	return 0
}

func (d *Display) writeKbdDataByte(off uint32, v byte) {
	if off == 0 {
		d.kbdData = v
	}
}

// PushKey is called by the input pump (display_backend.go/keyboard.go) to
// deliver one scancode and set the data-ready flag.
func (d *Display) PushKey(ascii byte) {
	d.kbdData = ascii
	d.kbdCtrl |= 1
}

// SetKeyHeld updates the 128-bit bitmap bit for key n (0..127).
func (d *Display) SetKeyHeld(n int, held bool) {
	if n < 0 || n >= 128 {
		return
	}
	byteIdx, bit := n/8, uint(n%8)
	if held {
		d.keyBitmap[byteIdx] |= 1 << bit
	} else {
		d.keyBitmap[byteIdx] &^= 1 << bit
	}
}

// Snapshot copies out the currently-selected framebuffer's pixels for the
// display backend to blit, taking the reader lock per §5's discipline.
func (d *Display) Snapshot() []byte {
	sel := int(d.frameSelect) & 1
	d.fbMu[sel].RLock()
	defer d.fbMu[sel].RUnlock()
	out := make([]byte, len(d.fb[sel].pixels))
	copy(out, d.fb[sel].pixels)
	return out
}

// ClearScreen fills one framebuffer with a solid color byte, used by the
// ClearScreen ecall (a7=48/148).
func (d *Display) ClearScreen(frame int, color byte) {
	if frame != 0 && frame != 1 {
		return
	}
	d.fbMu[frame].Lock()
	defer d.fbMu[frame].Unlock()
	px := d.fb[frame].pixels
	for i := range px {
		px[i] = color
	}
}
