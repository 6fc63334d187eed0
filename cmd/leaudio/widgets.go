package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	textScale = 2
	charW     = 7 * textScale
	lineH     = 13 * textScale
)

var (
	bgColor       = color.RGBA{0x21, 0x25, 0x29, 0xff}
	titleBarColor = color.RGBA{0x34, 0x3a, 0x40, 0xff}
	panelColor    = color.RGBA{0x49, 0x50, 0x57, 0xff}
	pressedColor  = color.RGBA{0x1c, 0x7e, 0xd6, 0xff}
	closeColor    = color.RGBA{0xc9, 0x2a, 0x2a, 0xff}
	mutedText     = color.RGBA{0xad, 0xb5, 0xbd, 0xff}

	bevelLight = color.RGBA{0x86, 0x8e, 0x96, 0xff}
	bevelDark  = color.RGBA{0x12, 0x14, 0x16, 0xff}
)

// labels draws fixed-width text with the 7x13 bitmap face, scaled up.
type labels struct {
	face text.Face
}

func newLabels() *labels {
	return &labels{face: text.NewGoXFace(basicfont.Face7x13)}
}

func (lb *labels) draw(screen *ebiten.Image, msg string, x, y int, clr color.Color) {
	if msg == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, lb.face, op)
}

// drawCentered draws msg centered inside rect.
func (lb *labels) drawCentered(screen *ebiten.Image, msg string, rect image.Rectangle, clr color.Color) {
	w := len([]rune(msg)) * charW
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	lb.draw(screen, msg, x, y, clr)
}

func fillRect(dst *ebiten.Image, rect image.Rectangle, clr color.Color) {
	vector.DrawFilledRect(dst, float32(rect.Min.X), float32(rect.Min.Y), float32(rect.Dx()), float32(rect.Dy()), clr, false)
}

func (lb *labels) drawButton(screen *ebiten.Image, rect image.Rectangle, label string, fill color.Color, enabled bool) {
	fillRect(screen, rect, fill)
	drawBorder(screen, rect)
	clr := color.Color(color.White)
	if !enabled {
		clr = mutedText
	}
	lb.drawCentered(screen, label, rect, clr)
}

// drawBorder draws a raised bevel: highlight top/left, shadow bottom/right.
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float32(rect.Min.X)
	y := float32(rect.Min.Y)
	w := float32(rect.Dx())
	h := float32(rect.Dy())
	vector.DrawFilledRect(screen, x, y, w-1, 1, bevelLight, false)
	vector.DrawFilledRect(screen, x, y+1, 1, h-2, bevelLight, false)
	vector.DrawFilledRect(screen, x, y+h-1, w, 1, bevelDark, false)
	vector.DrawFilledRect(screen, x+w-1, y, 1, h, bevelDark, false)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func shortenMiddle(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 7 {
		return shortenEnd(s, maxChars)
	}
	left := (maxChars - 3) / 2
	right := maxChars - 3 - left
	return string(r[:left]) + "..." + string(r[len(r)-right:])
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}
