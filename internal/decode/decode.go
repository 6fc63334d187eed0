// Package decode turns local audio files into 16-bit little-endian stereo PCM
// at a requested sample rate.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/go-mp3"
)

const bytesPerFrame = 4

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type Format string

const (
	FormatMP3    Format = "mp3"
	FormatWAV    Format = "wav"
	FormatVorbis Format = "ogg"
)

// Extensions lists the file extensions Open understands, without the dot.
var Extensions = []string{"mp3", "wav", "wave", "ogg", "oga"}

// Stream is a decoded, seekable PCM stream. Read yields 16-bit LE stereo.
type Stream struct {
	io.ReadSeeker
	Format     Format
	SampleRate int
	length     int64
}

// Length returns the stream size in bytes, or -1 if unknown.
func (s *Stream) Length() int64 { return s.length }

// Duration returns the playing time of the stream.
func (s *Stream) Duration() time.Duration {
	if s.length <= 0 || s.SampleRate <= 0 {
		return 0
	}
	frames := s.length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(s.SampleRate)
}

// Open reads and decodes path. It returns once the header has been parsed, so
// sample rate and length are known.
func Open(path string, sampleRate int) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(filepath.Base(path), data, sampleRate)
}

// Decode decodes an in-memory file. name is used to guess the format before
// falling back to magic bytes.
func Decode(name string, data []byte, sampleRate int) (*Stream, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	format, err := Detect(name, data)
	if err != nil {
		return nil, err
	}
	var (
		src    io.ReadSeeker
		length int64
		rate   int
	)
	switch format {
	case FormatMP3:
		d, err := mp3.NewDecoder(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding mp3: %w", err)
		}
		src, length, rate = d, d.Length(), d.SampleRate()
	case FormatWAV:
		pcm, r, err := decodeWAV(data)
		if err != nil {
			return nil, fmt.Errorf("decoding wav: %w", err)
		}
		src, length, rate = bytes.NewReader(pcm), int64(len(pcm)), r
	case FormatVorbis:
		s, err := vorbis.DecodeWithoutResampling(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding vorbis: %w", err)
		}
		src, length, rate = s, s.Length(), s.SampleRate()
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%s: invalid sample rate %d", format, rate)
	}
	if rate != sampleRate {
		src = ebitaudio.Resample(src, length, rate, sampleRate)
		if length > 0 {
			length = length / bytesPerFrame * int64(sampleRate) / int64(rate) * bytesPerFrame
		}
	}
	return &Stream{
		ReadSeeker: src,
		Format:     format,
		SampleRate: sampleRate,
		length:     length,
	}, nil
}

// Detect picks a decoder from the file extension, then from the leading bytes.
func Detect(name string, data []byte) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "mp3":
		return FormatMP3, nil
	case "wav", "wave":
		return FormatWAV, nil
	case "ogg", "oga":
		return FormatVorbis, nil
	}
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return FormatVorbis, nil
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}
