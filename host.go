package leaudio

import (
	"errors"
	"sync"
	"sync/atomic"

	intanalyser "github.com/cbegin/leaudio-go/internal/analyser"
	intaudio "github.com/cbegin/leaudio-go/internal/audio"
	intdecode "github.com/cbegin/leaudio-go/internal/decode"
)

// MediaElement is a loaded audio source with its own playback and gain state.
type MediaElement interface {
	Play()
	Pause()
	IsPlaying() bool
	Volume() float64
	SetVolume(volume float64)
	Close() error
}

// FrequencyAnalyser fills a buffer with the current magnitude of each
// frequency bin, scaled to 0..255.
type FrequencyAnalyser interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// Host builds the platform objects a Player wires into an audio graph.
type Host interface {
	// CreateMediaElement loads path and returns once its metadata is ready.
	// onEnded may be called from any goroutine when playback reaches the end.
	// It receives the element that ended.
	CreateMediaElement(path string, onEnded func(MediaElement)) (MediaElement, error)
	// CreateAnalyser routes el through a new analyser. el stays connected
	// to the audio output.
	CreateAnalyser(el MediaElement, fftSize int) (FrequencyAnalyser, error)
}

type ebitenHost struct {
	sampleRate int
}

// NewHost returns the Host that decodes local files and plays them through
// the shared ebiten audio context.
func NewHost(sampleRate int) Host {
	return &ebitenHost{sampleRate: sampleRate}
}

func (h *ebitenHost) CreateMediaElement(path string, onEnded func(MediaElement)) (MediaElement, error) {
	stream, err := intdecode.Open(path, h.sampleRate)
	if err != nil {
		return nil, err
	}
	el := &ebitenElement{onEnded: onEnded}
	el.source = &endingSource{PCMSource: intaudio.NewPCMSource(stream), onFinish: el.finished}
	backend, err := intaudio.NewPlayer(h.sampleRate, el.source, el.tap)
	if err != nil {
		return nil, err
	}
	el.player = backend
	return el, nil
}

func (h *ebitenHost) CreateAnalyser(el MediaElement, fftSize int) (FrequencyAnalyser, error) {
	e, ok := el.(*ebitenElement)
	if !ok {
		return nil, errors.New("media element was not created by this host")
	}
	a, err := intanalyser.New(fftSize)
	if err != nil {
		return nil, err
	}
	a.SetClock(e.player.PositionFrames)
	a.SetSilent(!e.player.IsPlaying())
	e.analyser.Store(a)
	return a, nil
}

type ebitenElement struct {
	player    *intaudio.Player
	source    *endingSource
	analyser  atomic.Pointer[intanalyser.Analyser]
	onEnded   func(MediaElement)
	endedOnce sync.Once
}

// Play and Pause also switch the analyser between the stream and silence:
// ebiten stops pulling samples while paused, so the tap goes quiet.
func (e *ebitenElement) Play() {
	e.setSilent(false)
	e.player.Play()
}

func (e *ebitenElement) Pause() {
	e.player.Pause()
	e.setSilent(true)
}

func (e *ebitenElement) setSilent(silent bool) {
	if a := e.analyser.Load(); a != nil {
		a.SetSilent(silent)
	}
}

func (e *ebitenElement) IsPlaying() bool          { return e.player.IsPlaying() }
func (e *ebitenElement) Volume() float64          { return e.player.Volume() }
func (e *ebitenElement) SetVolume(volume float64) { e.player.SetVolume(volume) }

func (e *ebitenElement) Close() error {
	e.analyser.Store(nil)
	return e.player.Stop()
}

// tap runs on the audio thread.
func (e *ebitenElement) tap(buf []float32) {
	if a := e.analyser.Load(); a != nil {
		a.Tap(buf)
	}
}

// finished runs on the audio thread; the callback is moved off it so it can
// take locks the UI side holds while closing this element.
func (e *ebitenElement) finished() {
	e.endedOnce.Do(func() {
		e.setSilent(true)
		if e.onEnded != nil {
			go e.onEnded(e)
		}
	})
}

// endingSource reports the first Process call that hits end of stream.
type endingSource struct {
	*intaudio.PCMSource
	onFinish func()
}

func (s *endingSource) Process(dst []float32) {
	s.PCMSource.Process(dst)
	if s.Finished() {
		s.onFinish()
	}
}
