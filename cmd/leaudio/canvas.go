package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ebitenCanvas is the offscreen image the visualization loop paints. Draw
// copies it onto the screen every frame.
type ebitenCanvas struct {
	img *ebiten.Image
}

func (c *ebitenCanvas) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if c.img != nil {
		b := c.img.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return
		}
		c.img.Deallocate()
	}
	c.img = ebiten.NewImage(width, height)
}

func (c *ebitenCanvas) Size() (int, int) {
	if c.img == nil {
		return 0, 0
	}
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *ebitenCanvas) Clear() {
	if c.img != nil {
		c.img.Clear()
	}
}

func (c *ebitenCanvas) FillRect(x, y, width, height float64, clr color.Color) {
	if c.img == nil || width <= 0 || height <= 0 {
		return
	}
	vector.DrawFilledRect(c.img, float32(x), float32(y), float32(width), float32(height), clr, false)
}
