package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// PCMSource converts a 16-bit little-endian stereo stream into float32 frames.
// Once the underlying reader is exhausted the remaining output is silence and
// Finished reports true.
type PCMSource struct {
	r        io.Reader
	raw      []byte
	finished bool
	err      error
}

func NewPCMSource(r io.Reader) *PCMSource {
	return &PCMSource{r: r}
}

func (s *PCMSource) Process(dst []float32) {
	need := len(dst) * 2
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	s.raw = s.raw[:need]
	n := 0
	if !s.finished {
		var err error
		n, err = io.ReadFull(s.r, s.raw)
		if err != nil {
			s.finished = true
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.err = err
			}
		}
	}
	n &^= 1
	for i := 0; i < n/2; i++ {
		v := int16(binary.LittleEndian.Uint16(s.raw[i*2:]))
		dst[i] = float32(v) / 32768
	}
	clear(dst[n/2:])
}

func (s *PCMSource) Finished() bool { return s.finished }

// Err reports a read failure other than end of stream.
func (s *PCMSource) Err() error { return s.err }

type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	tap    func([]float32)
	buf    []float32
}

// NewStreamReader returns a reader of float32 LE stereo frames. tap, when set,
// sees every buffer after it is generated and runs on the audio thread.
func NewStreamReader(source SampleSource, tap func([]float32)) *StreamReader {
	return &StreamReader{source: source, tap: tap}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	if r.tap != nil {
		r.tap(r.buf)
	}
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player     *ebitaudio.Player
	reader     io.ReadCloser
	sampleRate int
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer creates a paused player reading from source at sampleRate.
func NewPlayer(sampleRate int, source SampleSource, tap func([]float32)) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source, tap)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player:     pl,
		reader:     reader,
		sampleRate: sampleRate,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Volume() float64         { return p.player.Volume() }
func (p *Player) SetVolume(volume float64) { p.player.SetVolume(volume) }

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// PositionFrames is Position expressed in frames at the context sample rate.
func (p *Player) PositionFrames() int64 {
	return int64(p.player.Position().Seconds() * float64(p.sampleRate))
}

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
