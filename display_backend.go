//go:build !headless

// display_backend.go - C10's display and keyboard backend: an Ebiten
// window that snapshots the currently-selected framebuffer once a frame
// and pumps key events into the MMIO keyboard registers.
//
// Adapted from video_backend_ebiten.go's EbitenOutput: same
// RunGame/Update/Draw/Layout shape and inpututil-driven key polling, but
// the many chip-emulation concerns (status bar, clipboard paste, hard
// reset, palette/texture/sprite capability flags) are gone — this backend
// only ever renders one 8-bit indexed framebuffer through palette332 and
// forwards key state to a Display.

package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type displayGame struct {
	disp   *Display
	width  int
	height int
	scale  int
	img    *image.RGBA
	keys   []ebiten.Key
}

// RunDisplay blocks running the Ebiten event loop; it must be called from
// the process's main goroutine, as Ebiten requires.
func RunDisplay(disp *Display, width, height, scale int) error {
	g := &displayGame{
		disp:   disp,
		width:  width,
		height: height,
		scale:  scale,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle("fpgrars")
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(g)
}

func (g *displayGame) Update() error {
	g.keys = inpututil.AppendPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if inpututil.IsKeyJustPressed(k) {
			if ascii, ok := keyToASCII(k); ok {
				g.disp.PushKey(ascii)
			}
		}
	}
	for n := 0; n < 128; n++ {
		k, ok := bitIndexToKey(n)
		g.disp.SetKeyHeld(n, ok && ebiten.IsKeyPressed(k))
	}

	if (ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)) &&
		ebiten.IsKeyPressed(ebiten.KeyShift) && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		debugCopyScreenshot(g.disp, g.width, g.height)
	}
	return nil
}

func (g *displayGame) Draw(screen *ebiten.Image) {
	px := g.disp.Snapshot()
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := px[y*g.width+x]
			c := palette332[idx]
			g.img.Set(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	screen.WritePixels(g.img.Pix)
}

func (g *displayGame) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
