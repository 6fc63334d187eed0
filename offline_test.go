package leaudio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeToneWAV writes a 16-bit stereo wav holding a sine that lands exactly
// on FFT bin `bin` for a 2048-point transform.
func writeToneWAV(t *testing.T, dir string, sampleRate, frames, bin int, amp float64) string {
	t.Helper()
	dataSize := frames * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 2)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*4))
	binary.LittleEndian.PutUint16(out[32:], 4)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i := 0; i < frames; i++ {
		v := int16(math.Round(amp * 32767 * math.Sin(2*math.Pi*float64(bin)*float64(i)/2048)))
		binary.LittleEndian.PutUint16(out[44+i*4:], uint16(v))
		binary.LittleEndian.PutUint16(out[46+i*4:], uint16(v))
	}
	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	return path
}

func TestAnalyzeFileFindsTone(t *testing.T) {
	path := writeToneWAV(t, t.TempDir(), 48000, 48000, 64, 0.01)

	data, err := AnalyzeFile(path, 48000, DefaultFFTSize, 500*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, data, 1024)

	peak := 0
	for i, v := range data {
		if v > data[peak] {
			peak = i
		}
	}
	assert.Equal(t, 64, peak)
	assert.Zero(t, data[700])
}

func TestAnalyzeFilePastEndIsSilent(t *testing.T) {
	path := writeToneWAV(t, t.TempDir(), 48000, 4096, 64, 0.01)

	data, err := AnalyzeFile(path, 48000, DefaultFFTSize, 2*time.Second)
	require.NoError(t, err)
	for i, v := range data {
		require.Zero(t, v, "bin %d", i)
	}
}

func TestAnalyzeFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := AnalyzeFile(filepath.Join(dir, "missing.wav"), 48000, DefaultFFTSize, time.Second)
	assert.Error(t, err)

	path := writeToneWAV(t, dir, 48000, 4096, 64, 0.01)
	_, err = AnalyzeFile(path, 48000, 1000, time.Second)
	assert.Error(t, err)
}
