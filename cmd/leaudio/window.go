package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenWindow is the chrome.Window for the running ebiten window.
type ebitenWindow struct {
	closing bool

	dragging  bool
	dragStart image.Point // cursor in screen coordinates
	winStart  image.Point
}

func (w *ebitenWindow) Minimize() { ebiten.MinimizeWindow() }

func (w *ebitenWindow) ToggleMaximize() {
	if ebiten.IsWindowMaximized() {
		ebiten.RestoreWindow()
		return
	}
	ebiten.MaximizeWindow()
}

// Close is picked up by the next Update, which ends the game loop.
func (w *ebitenWindow) Close() { w.closing = true }

// beginDrag starts moving a frameless window by its title bar. cx, cy are
// window-relative cursor coordinates.
func (w *ebitenWindow) beginDrag(cx, cy int) {
	wx, wy := ebiten.WindowPosition()
	w.dragging = true
	w.winStart = image.Pt(wx, wy)
	w.dragStart = image.Pt(wx+cx, wy+cy)
}

func (w *ebitenWindow) drag(cx, cy int, held bool) {
	if !w.dragging {
		return
	}
	if !held {
		w.dragging = false
		return
	}
	wx, wy := ebiten.WindowPosition()
	screen := image.Pt(wx+cx, wy+cy)
	next := w.winStart.Add(screen.Sub(w.dragStart))
	if next.X != wx || next.Y != wy {
		ebiten.SetWindowPosition(next.X, next.Y)
	}
}
