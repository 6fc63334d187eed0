package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/wav"
)

// decodeWAV reads an integer PCM wav and returns 16-bit stereo frames.
// Mono is duplicated to both channels; channels beyond the second are dropped.
func decodeWAV(data []byte) ([]byte, int, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	channels := int(d.NumChans)
	if channels < 1 {
		return nil, 0, fmt.Errorf("invalid channel count %d", channels)
	}
	depth := int(d.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, 0, fmt.Errorf("unsupported bit depth %d", depth)
	}

	frames := len(buf.Data) / channels
	out := make([]byte, frames*bytesPerFrame)
	for i := 0; i < frames; i++ {
		l := toInt16(buf.Data[i*channels], depth)
		r := l
		if channels > 1 {
			r = toInt16(buf.Data[i*channels+1], depth)
		}
		binary.LittleEndian.PutUint16(out[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(r))
	}
	return out, int(d.SampleRate), nil
}

func toInt16(v int, depth int) int16 {
	switch depth {
	case 8:
		// 8-bit wav is unsigned.
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}
