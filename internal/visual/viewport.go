package visual

// Viewport tracks the observed window size and tells subscribers when it
// changes.
type Viewport struct {
	width, height int
	onResize      []func(width, height int)
}

// OnResize registers fn to run after every size change.
func (v *Viewport) OnResize(fn func(width, height int)) {
	v.onResize = append(v.onResize, fn)
}

// Observe records a reported size. Non-positive sizes are ignored.
func (v *Viewport) Observe(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == v.width && height == v.height {
		return false
	}
	v.width, v.height = width, height
	for _, fn := range v.onResize {
		fn(width, height)
	}
	return true
}

func (v *Viewport) Size() (width, height int) { return v.width, v.height }
