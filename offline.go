package leaudio

import (
	"time"

	intanalyser "github.com/cbegin/leaudio-go/internal/analyser"
	intaudio "github.com/cbegin/leaudio-go/internal/audio"
	intdecode "github.com/cbegin/leaudio-go/internal/decode"
)

const offlineChunkFrames = 1024

// AnalyzeFile decodes path without playing it and returns the byte frequency
// data a live analyser would report at offset at. Smoothing is disabled so the
// result depends only on the audio just before at.
func AnalyzeFile(path string, sampleRate int, fftSize int, at time.Duration) ([]byte, error) {
	stream, err := intdecode.Open(path, sampleRate)
	if err != nil {
		return nil, err
	}
	a, err := intanalyser.New(fftSize)
	if err != nil {
		return nil, err
	}
	a.SetSmoothing(0)
	if err := feedAnalyser(a, intaudio.NewPCMSource(stream), sampleRate, at); err != nil {
		return nil, err
	}
	out := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(out)
	return out, nil
}

func feedAnalyser(a *intanalyser.Analyser, src *intaudio.PCMSource, sampleRate int, at time.Duration) error {
	frames := int(at.Seconds() * float64(sampleRate))
	frames = max(frames, a.FFTSize())
	buf := make([]float32, offlineChunkFrames*2)
	// Past the end of the file the analyser hears silence; one window of it
	// is enough to flush the ring.
	silent := 0
	for done := 0; done < frames && silent < a.FFTSize(); done += offlineChunkFrames {
		n := min(offlineChunkFrames, frames-done)
		ended := src.Finished()
		src.Process(buf[:n*2])
		a.Tap(buf[:n*2])
		if ended {
			silent += n
		}
	}
	return src.Err()
}
