package visual

// Scheduler queues callbacks for the next display frame, the way
// requestAnimationFrame does in a browser. It is not safe for concurrent use;
// everything runs on the UI goroutine.
type Scheduler struct {
	queue []func()
}

func NewScheduler() *Scheduler { return &Scheduler{} }

func (s *Scheduler) RequestFrame(fn func()) {
	s.queue = append(s.queue, fn)
}

// RunFrame runs the callbacks queued before the call. Callbacks requested
// while the frame runs wait for the next RunFrame.
func (s *Scheduler) RunFrame() {
	q := s.queue
	s.queue = nil
	for _, fn := range q {
		fn()
	}
}

func (s *Scheduler) Pending() int { return len(s.queue) }

type LoopState int

const (
	LoopIdle LoopState = iota
	LoopRunning
	LoopSuperseded
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Loop redraws the bars every frame until cancelled.
type Loop struct {
	sched  *Scheduler
	canvas Canvas
	src    Source
	data   []byte
	style  Style
	state  LoopState
	frames int
}

func NewLoop(sched *Scheduler, canvas Canvas, src Source, data []byte, style Style) *Loop {
	return &Loop{sched: sched, canvas: canvas, src: src, data: data, style: style}
}

// Start schedules the first frame. It has no effect unless the loop is idle.
func (l *Loop) Start() {
	if l.state != LoopIdle {
		return
	}
	l.state = LoopRunning
	l.sched.RequestFrame(l.tick)
}

// Cancel stops the loop. A frame already queued runs as a no-op and does not
// reschedule.
func (l *Loop) Cancel() { l.state = LoopSuperseded }

func (l *Loop) State() LoopState { return l.state }

// Frames reports how many frames this loop has drawn.
func (l *Loop) Frames() int { return l.frames }

func (l *Loop) tick() {
	if l.state != LoopRunning {
		return
	}
	DrawFrame(l.canvas, l.src, l.data, l.style)
	l.frames++
	l.sched.RequestFrame(l.tick)
}
