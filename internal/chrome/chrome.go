// Package chrome lays out the title-bar buttons of a frameless window and
// forwards clicks on them to the host window.
package chrome

import "image"

type Window interface {
	Minimize()
	ToggleMaximize()
	Close()
}

type Action int

const (
	ActionMinimize Action = iota
	ActionMaximize
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionMinimize:
		return "minimize"
	case ActionMaximize:
		return "maximize"
	case ActionClose:
		return "close"
	default:
		return "unknown"
	}
}

const (
	BarHeight   = 30
	ButtonWidth = 30
)

type Button struct {
	Action Action
	Rect   image.Rectangle
}

type Chrome struct {
	win Window
}

// Attach wires the buttons to w until Detach.
func (c *Chrome) Attach(w Window) { c.win = w }

func (c *Chrome) Detach() { c.win = nil }

func (c *Chrome) Attached() bool { return c.win != nil }

// Bar is the draggable title-bar strip across the top of the viewport.
func (c *Chrome) Bar(viewWidth int) image.Rectangle {
	return image.Rect(0, 0, viewWidth, BarHeight)
}

// Buttons returns minimize, maximize and close, right-aligned.
func (c *Chrome) Buttons(viewWidth int) []Button {
	actions := []Action{ActionMinimize, ActionMaximize, ActionClose}
	out := make([]Button, len(actions))
	left := viewWidth - len(actions)*ButtonWidth
	for i, a := range actions {
		x := left + i*ButtonWidth
		out[i] = Button{Action: a, Rect: image.Rect(x, 0, x+ButtonWidth, BarHeight)}
	}
	return out
}

// Click dispatches a click at (x, y). It reports whether a button consumed it.
func (c *Chrome) Click(x, y, viewWidth int) bool {
	if c.win == nil {
		return false
	}
	p := image.Pt(x, y)
	for _, b := range c.Buttons(viewWidth) {
		if !p.In(b.Rect) {
			continue
		}
		switch b.Action {
		case ActionMinimize:
			c.win.Minimize()
		case ActionMaximize:
			c.win.ToggleMaximize()
		case ActionClose:
			c.win.Close()
		}
		return true
	}
	return false
}
