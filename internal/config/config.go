package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio
	SampleRate int
	FFTSize    int

	// Visualization
	BarMode string // skip-zero | draw-all
	Palette string // gradient | accent

	// Window
	Frameless    bool
	WindowWidth  int
	WindowHeight int

	MusicDir string
	LogLevel string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate: envInt("LEAUDIO_SAMPLE_RATE", 48000),
		FFTSize:    envInt("LEAUDIO_FFT_SIZE", 2048),

		BarMode: envStr("LEAUDIO_BAR_MODE", "skip-zero"),
		Palette: envStr("LEAUDIO_PALETTE", "gradient"),

		Frameless:    envBool("LEAUDIO_FRAMELESS", true),
		WindowWidth:  envInt("LEAUDIO_WINDOW_WIDTH", 1100),
		WindowHeight: envInt("LEAUDIO_WINDOW_HEIGHT", 720),

		MusicDir: expand(envStr("LEAUDIO_MUSIC_DIR", "~/Music")),
		LogLevel: envStr("LEAUDIO_LOG_LEVEL", "info"),
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range 8000..192000", c.SampleRate)
	}
	if c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("fft size %d must be a power of two between 32 and 32768", c.FFTSize)
	}
	switch c.BarMode {
	case "skip-zero", "draw-all":
	default:
		return fmt.Errorf("invalid bar mode %q (expected skip-zero|draw-all)", c.BarMode)
	}
	switch c.Palette {
	case "gradient", "accent":
	default:
		return fmt.Errorf("invalid palette %q (expected gradient|accent)", c.Palette)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	return nil
}

// expand resolves a leading ~. Unresolvable paths are returned unchanged.
func expand(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
