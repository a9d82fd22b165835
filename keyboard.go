// keyboard.go - C10's key-code translation between Ebiten's key enum and
// the ASCII scancodes/bit-indices this machine's MMIO keyboard registers
// expect (spec.md §4.10).

package main

import "github.com/hajimehoshi/ebiten/v2"

var keyASCII = map[ebiten.Key]byte{
	ebiten.KeyA: 'a', ebiten.KeyB: 'b', ebiten.KeyC: 'c', ebiten.KeyD: 'd',
	ebiten.KeyE: 'e', ebiten.KeyF: 'f', ebiten.KeyG: 'g', ebiten.KeyH: 'h',
	ebiten.KeyI: 'i', ebiten.KeyJ: 'j', ebiten.KeyK: 'k', ebiten.KeyL: 'l',
	ebiten.KeyM: 'm', ebiten.KeyN: 'n', ebiten.KeyO: 'o', ebiten.KeyP: 'p',
	ebiten.KeyQ: 'q', ebiten.KeyR: 'r', ebiten.KeyS: 's', ebiten.KeyT: 't',
	ebiten.KeyU: 'u', ebiten.KeyV: 'v', ebiten.KeyW: 'w', ebiten.KeyX: 'x',
	ebiten.KeyY: 'y', ebiten.KeyZ: 'z',
	ebiten.Key0: '0', ebiten.Key1: '1', ebiten.Key2: '2', ebiten.Key3: '3',
	ebiten.Key4: '4', ebiten.Key5: '5', ebiten.Key6: '6', ebiten.Key7: '7',
	ebiten.Key8: '8', ebiten.Key9: '9',
	ebiten.KeySpace: ' ', ebiten.KeyEnter: '\n', ebiten.KeyBackspace: 8,
	ebiten.KeyTab: '\t', ebiten.KeyEscape: 27,
}

// keyToASCII maps a key press to the one-byte scancode delivered through
// the keyboard data register.
func keyToASCII(k ebiten.Key) (byte, bool) {
	b, ok := keyASCII[k]
	return b, ok
}

// bitToKeySlice fixes bit N of the 128-bit key-state bitmap to a specific
// key, in a stable order (map iteration order is not stable in Go, and
// this order must not change between runs of the same program).
var bitToKeySlice = []ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ,
	ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyBackspace, ebiten.KeyTab, ebiten.KeyEscape,
	ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowLeft, ebiten.KeyArrowRight,
}

func bitIndexToKey(n int) (ebiten.Key, bool) {
	if n < 0 || n >= len(bitToKeySlice) {
		return 0, false
	}
	return bitToKeySlice[n], true
}
