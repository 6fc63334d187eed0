package leaudio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	intdecode "github.com/cbegin/leaudio-go/internal/decode"
	"github.com/cbegin/leaudio-go/internal/logging"
	"github.com/cbegin/leaudio-go/internal/visual"
)

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventLoaded or EventPlaybackEnded
	URL  string
}

const (
	EventLoaded int = iota
	EventPlaybackEnded
)

const (
	DefaultFFTSize = 2048
	VolumeStep     = 0.1
	MinVolume      = 0.1
	MaxVolume      = 1.0
)

// Session describes the currently loaded file.
type Session struct {
	SourceURL     string
	DisplayName   string
	IsPlaying     bool
	HasEverPlayed bool
}

// AnalyzerHandle is the analyser attached to the live media element plus the
// buffer the visualization loop reads magnitudes into.
type AnalyzerHandle struct {
	Analyser     FrequencyAnalyser
	BufferLength int
	Samples      []byte
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	host        Host
	fftSize     int
	logger      *slog.Logger
	sched       *visual.Scheduler
	canvas      visual.Canvas
	style       visual.Style
	displayName func(path string) string
}

func defaultPlayerConfig(sampleRate int) playerConfig {
	return playerConfig{
		host:        NewHost(sampleRate),
		fftSize:     DefaultFFTSize,
		logger:      logging.Discard(),
		style:       visual.DefaultStyle(),
		displayName: intdecode.DisplayName,
	}
}

// WithHost replaces the platform audio host.
func WithHost(h Host) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.host = h
	}
}

func WithFFTSize(size int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.fftSize = size
	}
}

func WithLogger(l *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = l
	}
}

// WithVisualizer starts a bar visualization loop on sched, painting canvas,
// for every loaded file.
func WithVisualizer(sched *visual.Scheduler, canvas visual.Canvas, style visual.Style) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sched = sched
		cfg.canvas = canvas
		cfg.style = style
	}
}

func WithDisplayName(fn func(path string) string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.displayName = fn
	}
}

type Player struct {
	mu          sync.Mutex
	host        Host
	fftSize     int
	logger      *slog.Logger
	sched       *visual.Scheduler
	canvas      visual.Canvas
	style       visual.Style
	displayName func(string) string

	volume     float64
	everPlayed bool

	element MediaElement
	handle  *AnalyzerHandle
	session *Session
	loop    *visual.Loop

	done      chan struct{}
	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig(sampleRate)
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.host == nil {
		return nil, errors.New("host must not be nil")
	}
	return &Player{
		host:        cfg.host,
		fftSize:     cfg.fftSize,
		logger:      cfg.logger,
		sched:       cfg.sched,
		canvas:      cfg.canvas,
		style:       cfg.style,
		displayName: cfg.displayName,
		volume:      MaxVolume,
	}, nil
}

// Open loads a local file and builds its audio graph: media element, then
// analyser, then the visualization loop. On failure the previous session is
// kept, paused, and the returned error matches ErrAudioGraphSetup.
func (p *Player) Open(url string) error {
	path, err := localPath(url)
	if err != nil {
		return p.setupFailed(url, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.element != nil {
		p.element.Pause()
		p.session.IsPlaying = false
	}

	el, err := p.host.CreateMediaElement(path, func(ended MediaElement) { p.handleEnded(ended, path) })
	if err != nil {
		return p.setupFailed(path, err)
	}
	an, err := p.host.CreateAnalyser(el, p.fftSize)
	if err != nil {
		if cerr := el.Close(); cerr != nil {
			p.logger.Warn("closing abandoned media element", "file", path, "err", cerr)
		}
		return p.setupFailed(path, err)
	}

	p.releaseLocked()

	bins := an.FrequencyBinCount()
	p.handle = &AnalyzerHandle{Analyser: an, BufferLength: bins, Samples: make([]byte, bins)}
	p.element = el
	p.element.SetVolume(p.volume)
	p.session = &Session{
		SourceURL:     path,
		DisplayName:   p.displayName(path),
		HasEverPlayed: p.everPlayed,
	}
	p.done = make(chan struct{})

	if p.sched != nil && p.canvas != nil {
		p.loop = visual.NewLoop(p.sched, p.canvas, an, p.handle.Samples, p.style)
		p.loop.Start()
	}
	// Once the user has pressed Play, later files start on their own.
	if p.everPlayed {
		p.element.Play()
		p.session.IsPlaying = true
	}
	p.logger.Info("audio graph ready", "file", path, "name", p.session.DisplayName, "bins", bins, "autoplay", p.everPlayed)
	p.sendEvent(PlaybackEvent{Kind: EventLoaded, URL: path})
	return nil
}

func localPath(url string) (string, error) {
	if rest, ok := strings.CutPrefix(url, "file://"); ok {
		url = rest
	} else if strings.Contains(url, "://") {
		return "", fmt.Errorf("remote media is not supported: %s", url)
	}
	if strings.TrimSpace(url) == "" {
		return "", errors.New("empty media path")
	}
	return url, nil
}

func (p *Player) setupFailed(url string, err error) error {
	p.logger.Error("could not process audio file", "file", url, "err", err)
	return &SetupError{URL: url, Err: err}
}

// releaseLocked stops the current loop and closes the current element.
// Caller holds p.mu.
func (p *Player) releaseLocked() {
	if p.loop != nil {
		p.loop.Cancel()
		p.loop = nil
	}
	if p.element != nil {
		if err := p.element.Close(); err != nil {
			p.logger.Warn("closing media element", "file", p.session.SourceURL, "err", err)
		}
		p.logger.Debug("released audio graph", "file", p.session.SourceURL)
		p.element = nil
	}
	p.handle = nil
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
}

func (p *Player) handleEnded(el MediaElement, path string) {
	p.mu.Lock()
	if el == nil || p.element != el {
		p.mu.Unlock()
		return
	}
	p.session.IsPlaying = false
	done := p.done
	p.done = nil
	p.mu.Unlock()

	p.logger.Info("playback ended", "file", path)
	p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded, URL: path})
	if done != nil {
		close(done)
	}
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Play starts or resumes the loaded file. It is a no-op with nothing loaded.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element == nil {
		return
	}
	p.element.Play()
	p.session.IsPlaying = true
	p.session.HasEverPlayed = true
	p.everPlayed = true
	p.logger.Debug("play", "file", p.session.SourceURL)
}

// Pause halts playback. Pausing a paused player does nothing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element == nil {
		return
	}
	p.element.Pause()
	p.session.IsPlaying = false
	p.logger.Debug("pause", "file", p.session.SourceURL)
}

// TogglePlayback pauses when playing and plays otherwise.
func (p *Player) TogglePlayback() {
	if s, ok := p.Session(); ok && s.IsPlaying {
		p.Pause()
		return
	}
	p.Play()
}

// VolumeUp raises the volume one step, up to MaxVolume. It is a no-op with
// nothing loaded.
func (p *Player) VolumeUp() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil && p.volume < MaxVolume {
		p.setVolumeLocked(math.Min(p.volume+VolumeStep, MaxVolume))
	}
	return p.volume
}

// VolumeDown lowers the volume one step, down to MinVolume.
func (p *Player) VolumeDown() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil && p.volume > MinVolume {
		p.setVolumeLocked(math.Max(p.volume-VolumeStep, MinVolume))
	}
	return p.volume
}

func (p *Player) setVolumeLocked(v float64) {
	p.volume = math.Round(v*10) / 10
	p.element.SetVolume(p.volume)
	p.logger.Debug("volume", "value", p.volume)
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Session returns a copy of the current session, or false when no file has
// been loaded.
func (p *Player) Session() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return Session{}, false
	}
	return *p.session, true
}

// Analyzer returns the handle attached to the live element, or nil.
func (p *Player) Analyzer() *AnalyzerHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Loop returns the live visualization loop, or nil.
func (p *Player) Loop() *visual.Loop {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// Close releases the audio graph. The last session stays readable.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.session.IsPlaying = false
	}
	p.releaseLocked()
}

// Wait blocks until the current file finishes playing, is replaced, or the
// player is closed. It returns immediately if nothing is loaded.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Watch returns a channel that receives playback events. Events are sent when:
//   - EventLoaded: Open built a new audio graph
//   - EventPlaybackEnded: the loaded file played to its end
//
// The channel is buffered (cap 8) and events are dropped when it is full.
// Only the most recent Watch() channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}
