package leaudio

import (
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cbegin/leaudio-go/internal/visual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	path    string
	playing bool
	volume  float64
	closed  bool
	onEnded func(MediaElement)
}

func (e *fakeElement) Play()                    { e.playing = true }
func (e *fakeElement) Pause()                   { e.playing = false }
func (e *fakeElement) IsPlaying() bool          { return e.playing }
func (e *fakeElement) Volume() float64          { return e.volume }
func (e *fakeElement) SetVolume(volume float64) { e.volume = volume }
func (e *fakeElement) Close() error {
	e.closed = true
	e.playing = false
	return nil
}

// end simulates the host reporting that playback reached the end.
func (e *fakeElement) end() { e.onEnded(e) }

type fakeAnalyser struct {
	bins  int
	level byte
	reads int
}

func (a *fakeAnalyser) FrequencyBinCount() int { return a.bins }
func (a *fakeAnalyser) ByteFrequencyData(dst []byte) {
	a.reads++
	for i := range dst {
		dst[i] = a.level
	}
}

type fakeHost struct {
	elements     []*fakeElement
	analysers    []*fakeAnalyser
	failAnalyser bool
	// endAtOnce fires onEnded from another goroutine before
	// CreateMediaElement returns.
	endAtOnce bool
}

func (h *fakeHost) CreateMediaElement(path string, onEnded func(MediaElement)) (MediaElement, error) {
	if strings.Contains(path, "corrupt") {
		return nil, errors.New("unsupported codec")
	}
	el := &fakeElement{path: path, volume: 1, onEnded: onEnded}
	h.elements = append(h.elements, el)
	if h.endAtOnce {
		go onEnded(el)
	}
	return el, nil
}

func (h *fakeHost) CreateAnalyser(el MediaElement, fftSize int) (FrequencyAnalyser, error) {
	if h.failAnalyser {
		return nil, errors.New("analyser unavailable")
	}
	a := &fakeAnalyser{bins: fftSize / 2, level: byte(len(h.analysers) + 1)}
	h.analysers = append(h.analysers, a)
	return a, nil
}

func (h *fakeHost) live() []*fakeElement {
	var out []*fakeElement
	for _, el := range h.elements {
		if !el.closed {
			out = append(out, el)
		}
	}
	return out
}

type nullCanvas struct{ fills int }

func (c *nullCanvas) Size() (int, int)                        { return 800, 400 }
func (c *nullCanvas) Clear()                                  {}
func (c *nullCanvas) FillRect(_, _, _, _ float64, _ color.Color) { c.fills++ }

func newTestPlayer(t *testing.T, opts ...PlayerOption) (*Player, *fakeHost) {
	t.Helper()
	host := &fakeHost{}
	opts = append([]PlayerOption{WithHost(host), WithDisplayName(filepath.Base)}, opts...)
	pl, err := NewPlayer(48000, opts...)
	require.NoError(t, err)
	return pl, host
}

func TestNewPlayerValidates(t *testing.T) {
	_, err := NewPlayer(0)
	assert.Error(t, err)
	_, err = NewPlayer(48000, WithHost(nil))
	assert.Error(t, err)
}

func TestOpenBuildsGraph(t *testing.T) {
	pl, host := newTestPlayer(t)
	_, ok := pl.Session()
	assert.False(t, ok)

	require.NoError(t, pl.Open("/music/track.mp3"))

	s, ok := pl.Session()
	require.True(t, ok)
	assert.Equal(t, Session{SourceURL: "/music/track.mp3", DisplayName: "track.mp3"}, s)

	h := pl.Analyzer()
	require.NotNil(t, h)
	assert.Equal(t, 1024, h.BufferLength)
	assert.Len(t, h.Samples, 1024)
	assert.False(t, host.elements[0].playing, "first load waits for Play")
}

func TestOpenAcceptsFileURL(t *testing.T) {
	pl, _ := newTestPlayer(t)
	require.NoError(t, pl.Open("file:///music/a.wav"))
	s, _ := pl.Session()
	assert.Equal(t, "/music/a.wav", s.SourceURL)
}

func TestOpenRejectsRemoteAndEmpty(t *testing.T) {
	pl, host := newTestPlayer(t)
	for _, url := range []string{"https://example.com/a.mp3", "  "} {
		err := pl.Open(url)
		assert.ErrorIs(t, err, ErrAudioGraphSetup, url)
	}
	assert.Empty(t, host.elements)
}

func TestOpenFailureKeepsPreviousSession(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/good.mp3"))
	pl.Play()

	err := pl.Open("/music/corrupt.mp3")
	require.ErrorIs(t, err, ErrAudioGraphSetup)
	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, "/music/corrupt.mp3", setupErr.URL)

	s, ok := pl.Session()
	require.True(t, ok)
	assert.Equal(t, "/music/good.mp3", s.SourceURL)
	assert.False(t, s.IsPlaying, "old audio is paused before the new graph is built")
	assert.False(t, host.elements[0].closed)
	assert.NotNil(t, pl.Analyzer())
}

func TestAnalyserFailureClosesNewElement(t *testing.T) {
	pl, host := newTestPlayer(t)
	host.failAnalyser = true

	err := pl.Open("/music/a.mp3")
	assert.ErrorIs(t, err, ErrAudioGraphSetup)
	require.Len(t, host.elements, 1)
	assert.True(t, host.elements[0].closed)
	_, ok := pl.Session()
	assert.False(t, ok)
	assert.Nil(t, pl.Analyzer())
}

func TestSecondOpenLeavesOneGraphAndOneLoop(t *testing.T) {
	sched := visual.NewScheduler()
	canvas := &nullCanvas{}
	pl, host := newTestPlayer(t, WithVisualizer(sched, canvas, visual.DefaultStyle()))

	require.NoError(t, pl.Open("/music/one.mp3"))
	pl.Play()
	sched.RunFrame()
	first := pl.Loop()
	require.NotNil(t, first)

	require.NoError(t, pl.Open("/music/two.mp3"))
	assert.Equal(t, visual.LoopSuperseded, first.State())
	assert.Equal(t, visual.LoopRunning, pl.Loop().State())

	live := host.live()
	require.Len(t, live, 1)
	assert.Equal(t, "/music/two.mp3", live[0].path)

	readsBefore := host.analysers[0].reads
	sched.RunFrame()
	sched.RunFrame()
	assert.Equal(t, readsBefore, host.analysers[0].reads, "old analyser is no longer drawn")
	assert.Equal(t, 2, host.analysers[1].reads)
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, pl.Analyzer().Samples[0], host.analysers[1].level)
}

func TestAutoplayAfterFirstPlay(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/one.mp3"))
	s, _ := pl.Session()
	assert.False(t, s.HasEverPlayed)

	pl.Play()
	require.NoError(t, pl.Open("/music/two.mp3"))

	s, _ = pl.Session()
	assert.True(t, s.IsPlaying)
	assert.True(t, s.HasEverPlayed)
	assert.True(t, host.elements[1].playing)
}

func TestVolumeStaysInRange(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/a.mp3"))

	for i := 0; i < 20; i++ {
		require.LessOrEqual(t, pl.VolumeUp(), MaxVolume)
	}
	assert.Equal(t, 1.0, pl.Volume())

	for i := 0; i < 20; i++ {
		require.GreaterOrEqual(t, pl.VolumeDown(), MinVolume)
	}
	assert.Equal(t, 0.1, pl.Volume())
	assert.Equal(t, 0.1, host.elements[0].volume)

	pl.VolumeUp()
	pl.VolumeUp()
	assert.Equal(t, 0.3, pl.Volume())
}

func TestVolumeCarriesToNextFile(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/a.mp3"))
	pl.VolumeDown()
	require.NoError(t, pl.Open("/music/b.mp3"))
	assert.Equal(t, 0.9, host.elements[1].volume)
}

func TestPauseTwiceStaysPaused(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/a.mp3"))
	pl.Play()
	pl.Pause()
	pl.Pause()

	s, _ := pl.Session()
	assert.False(t, s.IsPlaying)
	assert.True(t, s.HasEverPlayed)
	assert.False(t, host.elements[0].playing)
}

func TestTogglePlayback(t *testing.T) {
	pl, _ := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/a.mp3"))
	pl.TogglePlayback()
	s, _ := pl.Session()
	assert.True(t, s.IsPlaying)
	pl.TogglePlayback()
	s, _ = pl.Session()
	assert.False(t, s.IsPlaying)
}

func TestTransportWithoutFileIsNoop(t *testing.T) {
	pl, _ := newTestPlayer(t)
	pl.Play()
	pl.Pause()
	pl.TogglePlayback()
	assert.Equal(t, 1.0, pl.VolumeDown())
	_, ok := pl.Session()
	assert.False(t, ok)
	pl.Wait()
}

func TestPlaybackEndedEvent(t *testing.T) {
	pl, host := newTestPlayer(t)
	events := pl.Watch()
	require.NoError(t, pl.Open("/music/a.mp3"))
	assert.Equal(t, PlaybackEvent{Kind: EventLoaded, URL: "/music/a.mp3"}, <-events)
	pl.Play()

	host.elements[0].end()
	assert.Equal(t, PlaybackEvent{Kind: EventPlaybackEnded, URL: "/music/a.mp3"}, <-events)
	s, _ := pl.Session()
	assert.False(t, s.IsPlaying)
	pl.Wait()
}

func TestStaleEndedCallbackIsIgnored(t *testing.T) {
	pl, host := newTestPlayer(t)
	require.NoError(t, pl.Open("/music/a.mp3"))
	require.NoError(t, pl.Open("/music/b.mp3"))
	pl.Play()

	host.elements[0].end()
	s, _ := pl.Session()
	assert.True(t, s.IsPlaying)
}

func TestCloseReleasesGraph(t *testing.T) {
	sched := visual.NewScheduler()
	pl, host := newTestPlayer(t, WithVisualizer(sched, &nullCanvas{}, visual.DefaultStyle()))
	require.NoError(t, pl.Open("/music/a.mp3"))
	pl.Play()

	pl.Close()
	assert.Empty(t, host.live())
	assert.Nil(t, pl.Analyzer())
	assert.Nil(t, pl.Loop())
	sched.RunFrame()
	assert.Zero(t, sched.Pending())

	s, ok := pl.Session()
	require.True(t, ok)
	assert.False(t, s.IsPlaying)
	pl.Play()
}

func TestEndedDuringOpenIsAttributedToNewElement(t *testing.T) {
	pl, host := newTestPlayer(t)
	host.endAtOnce = true
	events := pl.Watch()

	require.NoError(t, pl.Open("/music/short.wav"))
	assert.Equal(t, PlaybackEvent{Kind: EventLoaded, URL: "/music/short.wav"}, <-events)

	select {
	case ev := <-events:
		assert.Equal(t, PlaybackEvent{Kind: EventPlaybackEnded, URL: "/music/short.wav"}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("ended callback was not delivered")
	}
	pl.Wait()
}

func TestLoopKeepsDrawingWhilePaused(t *testing.T) {
	sched := visual.NewScheduler()
	pl, host := newTestPlayer(t, WithVisualizer(sched, &nullCanvas{}, visual.DefaultStyle()))
	require.NoError(t, pl.Open("/music/a.mp3"))
	pl.Play()
	sched.RunFrame()

	pl.Pause()
	reads := host.analysers[0].reads
	sched.RunFrame()
	sched.RunFrame()

	assert.Equal(t, reads+2, host.analysers[0].reads)
	assert.Equal(t, visual.LoopRunning, pl.Loop().State())
	assert.Equal(t, 1, sched.Pending())
}
