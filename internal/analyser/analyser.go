// Package analyser implements a frequency analyser fed from the audio thread.
// Output matches the byte scaling of a Web Audio AnalyserNode: Blackman
// window, real FFT, exponential smoothing over time, and a linear mapping of
// the [MinDecibels, MaxDecibels] range onto 0..255.
package analyser

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	DefaultFFTSize   = 2048
	MinFFTSize       = 32
	MaxFFTSize       = 32768
	DefaultSmoothing = 0.8
	MinDecibels      = -100.0
	MaxDecibels      = -30.0

	ringBufLen = 65536
)

var ErrInvalidFFTSize = errors.New("fft size must be a power of two between 32 and 32768")

type Analyser struct {
	mu          sync.Mutex
	fftSize     int
	smoothing   float64
	ring        []float32 // mono ring buffer
	writePos    int
	totalTapped int64 // mono samples written since the last Reset
	clock       func() int64
	silent      bool

	window []float64
	frame  []float64
	prev   []float64
}

func New(fftSize int) (*Analyser, error) {
	if fftSize < MinFFTSize || fftSize > MaxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}
	return &Analyser{
		fftSize:   fftSize,
		smoothing: DefaultSmoothing,
		ring:      make([]float32, ringBufLen),
		window:    window.Blackman(fftSize),
		frame:     make([]float64, fftSize),
		prev:      make([]float64, fftSize/2),
	}, nil
}

func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// SetSmoothing sets the time-averaging constant, clamped to [0, 1].
func (a *Analyser) SetSmoothing(tau float64) {
	a.mu.Lock()
	a.smoothing = math.Max(0, math.Min(1, tau))
	a.mu.Unlock()
}

// SetClock installs the playback position source, in frames. Snapshots are
// then aligned to what the listener hears instead of what was last decoded.
func (a *Analyser) SetClock(clock func() int64) {
	a.mu.Lock()
	a.clock = clock
	a.mu.Unlock()
}

// SetSilent makes the analyser hear silence instead of the ring, as a paused
// or ended media element does. The smoothed spectrum then decays to zero.
func (a *Analyser) SetSilent(silent bool) {
	a.mu.Lock()
	a.silent = silent
	a.mu.Unlock()
}

// Tap is called from the audio thread with interleaved stereo samples.
// Keep it minimal: just downmix into the ring.
func (a *Analyser) Tap(samples []float32) {
	a.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		a.ring[a.writePos] = (samples[i] + samples[i+1]) * 0.5
		a.writePos = (a.writePos + 1) % ringBufLen
		a.totalTapped++
	}
	a.mu.Unlock()
}

// Reset clears history and the tapped sample counter.
func (a *Analyser) Reset() {
	a.mu.Lock()
	clear(a.ring)
	clear(a.prev)
	a.writePos = 0
	a.totalTapped = 0
	a.mu.Unlock()
}

// snapshot copies the fftSize samples that are playing now into a.frame.
// Caller holds a.mu.
func (a *Analyser) snapshot() {
	if a.silent {
		clear(a.frame)
		return
	}
	n := a.fftSize
	delay := 0
	if a.clock != nil {
		delay = int(a.totalTapped - a.clock())
	}
	if delay < 0 {
		delay = 0
	}
	if delay > ringBufLen-n {
		delay = ringBufLen - n
	}
	start := (a.writePos - delay - n + ringBufLen*2) % ringBufLen
	for i := 0; i < n; i++ {
		a.frame[i] = float64(a.ring[(start+i)%ringBufLen])
	}
}

// FloatFrequencyData writes the current spectrum in decibels into dst.
// Silent bins read as -Inf.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyse()
	n := min(len(dst), len(a.prev))
	for k := 0; k < n; k++ {
		dst[k] = 20 * math.Log10(a.prev[k])
	}
}

// ByteFrequencyData writes the current spectrum scaled to 0..255 into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyse()
	n := min(len(dst), len(a.prev))
	scale := 255 / (MaxDecibels - MinDecibels)
	for k := 0; k < n; k++ {
		if a.prev[k] <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.prev[k])
		v := math.Floor(scale * (db - MinDecibels))
		dst[k] = byte(math.Max(0, math.Min(255, v)))
	}
}

// analyse runs one windowed FFT over the current snapshot and folds the
// normalized magnitudes into the smoothed history. Caller holds a.mu.
func (a *Analyser) analyse() {
	a.snapshot()
	window.Apply(a.frame, func(int) []float64 { return a.window })
	spectrum := fft.FFTReal(a.frame)
	norm := 1 / float64(a.fftSize)
	for k := range a.prev {
		mag := cmplx.Abs(spectrum[k]) * norm
		a.prev[k] = a.smoothing*a.prev[k] + (1-a.smoothing)*mag
	}
}
