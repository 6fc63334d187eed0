// Package visual draws frequency magnitudes as vertical bars and drives the
// per-frame redraw loop.
package visual

import (
	"fmt"
	"image/color"
	"math"
)

// Canvas is the 2D raster surface bars are painted on.
type Canvas interface {
	Size() (width, height int)
	Clear()
	FillRect(x, y, width, height float64, clr color.Color)
}

// Source fills a buffer with the current frequency magnitudes (0..255).
type Source interface {
	ByteFrequencyData(dst []byte)
}

// Palette maps a shade index (0 = quiet, 4 = loud) to a bar color.
type Palette [5]color.RGBA

var (
	// GradientPalette runs from light to dark blue.
	GradientPalette = Palette{
		{0xa5, 0xd8, 0xff, 0xff},
		{0x74, 0xc0, 0xfc, 0xff},
		{0x4d, 0xab, 0xf7, 0xff},
		{0x22, 0x8b, 0xe6, 0xff},
		{0x18, 0x64, 0xab, 0xff},
	}
	AccentPalette = Palette{
		{0x61, 0xda, 0xfb, 0xff},
		{0x61, 0xda, 0xfb, 0xff},
		{0x61, 0xda, 0xfb, 0xff},
		{0x61, 0xda, 0xfb, 0xff},
		{0x61, 0xda, 0xfb, 0xff},
	}
)

type BarMode int

const (
	// SkipZero draws nothing for silent buckets and does not advance x.
	SkipZero BarMode = iota
	// DrawAll draws every bucket, zero-height ones included.
	DrawAll
)

type Style struct {
	Mode    BarMode
	Palette Palette
}

func DefaultStyle() Style {
	return Style{Mode: SkipZero, Palette: GradientPalette}
}

// ParseStyle resolves the configured bar mode ("skip-zero", "draw-all") and
// palette ("gradient", "accent") names.
func ParseStyle(mode, palette string) (Style, error) {
	var s Style
	switch mode {
	case "skip-zero":
		s.Mode = SkipZero
	case "draw-all":
		s.Mode = DrawAll
	default:
		return Style{}, fmt.Errorf("unknown bar mode %q", mode)
	}
	switch palette {
	case "gradient":
		s.Palette = GradientPalette
	case "accent":
		s.Palette = AccentPalette
	default:
		return Style{}, fmt.Errorf("unknown palette %q", palette)
	}
	return s, nil
}

type Bar struct {
	X, Y, Width, Height float64
	Shade               int
}

// ShadeIndex buckets a magnitude into one of the five palette entries.
// floor(255/255*5) is 5, so the result is clamped.
func ShadeIndex(m byte) int {
	shade := int(math.Floor(float64(m) / 255 * 5))
	return max(0, min(len(Palette{})-1, shade))
}

// BarWidth is ceil(canvasWidth / bufferLength) * 2.5.
func BarWidth(canvasWidth, bufferLength int) float64 {
	if bufferLength <= 0 {
		return 0
	}
	return math.Ceil(float64(canvasWidth)/float64(bufferLength)) * 2.5
}

// Layout computes the bars for one frame without drawing them. Bars rest on
// the horizontal midline of the canvas.
func Layout(data []byte, canvasWidth, canvasHeight int, mode BarMode) []Bar {
	half := float64(canvasHeight) / 2
	barWidth := BarWidth(canvasWidth, len(data))
	bars := make([]Bar, 0, len(data))
	x := 0.0
	for _, m := range data {
		if m == 0 && mode == SkipZero {
			continue
		}
		h := float64(m) / 255 * half
		bars = append(bars, Bar{X: x, Y: half - h, Width: barWidth, Height: h, Shade: ShadeIndex(m)})
		x += barWidth + 1
	}
	return bars
}

// DrawFrame renders one frame: refresh data from src, clear the canvas and
// paint the bars.
func DrawFrame(c Canvas, src Source, data []byte, style Style) {
	src.ByteFrequencyData(data)
	c.Clear()
	w, h := c.Size()
	for _, b := range Layout(data, w, h, style.Mode) {
		c.FillRect(b.X, b.Y, b.Width, b.Height, style.Palette[b.Shade])
	}
}
