package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cbegin/leaudio-go"
	"github.com/cbegin/leaudio-go/internal/config"
	"github.com/cbegin/leaudio-go/internal/logging"
)

const snapshotColumns = 64

func main() {
	cfg := config.Load()
	var (
		path       = flag.String("file", "", "path to an audio file (mp3, wav, ogg)")
		sampleRate = flag.Int("sample-rate", cfg.SampleRate, "output sample rate")
		fftSize    = flag.Int("fft-size", cfg.FFTSize, "analyser transform size")
		volume     = flag.Float64("volume", 1.0, "playback volume (0.1..1.0, steps of 0.1)")
		snapshot   = flag.Duration("snapshot", 0, "print the spectrum at this offset and exit instead of playing")
		logLevel   = flag.String("log-level", cfg.LogLevel, "debug|info|warn|error")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *path == "" && flag.NArg() > 0 {
		*path = flag.Arg(0)
	}
	if strings.TrimSpace(*path) == "" {
		fmt.Fprintln(os.Stderr, "usage: leaudio_cli -file track.mp3 [-snapshot 30s]")
		os.Exit(2)
	}

	if *snapshot > 0 {
		data, err := leaudio.AnalyzeFile(*path, *sampleRate, *fftSize, *snapshot)
		if err != nil {
			fatal(logger, "analyze", err)
		}
		printSpectrum(data, snapshotColumns)
		return
	}

	pl, err := leaudio.NewPlayer(*sampleRate, leaudio.WithFFTSize(*fftSize), leaudio.WithLogger(logger))
	if err != nil {
		fatal(logger, "new player", err)
	}
	ch := pl.Watch()
	if err := pl.Open(*path); err != nil {
		fatal(logger, "open", err)
	}
	for pl.Volume() > *volume+1e-9 && pl.Volume() > leaudio.MinVolume {
		pl.VolumeDown()
	}
	s, _ := pl.Session()
	pl.Play()
	fmt.Printf("Currently Playing: %s\n", s.DisplayName)

	start := time.Now()
	for event := range ch {
		if event.Kind == leaudio.EventPlaybackEnded {
			fmt.Printf("playback completed after %s\n", time.Since(start).Round(time.Second))
			break
		}
	}
	pl.Close()
}

// printSpectrum folds the bins into columns and prints one bar per column,
// strongest bin per column wins.
func printSpectrum(data []byte, columns int) {
	if len(data) == 0 {
		return
	}
	columns = min(columns, len(data))
	per := len(data) / columns
	const rows = 8
	peaks := make([]byte, columns)
	for c := 0; c < columns; c++ {
		for _, v := range data[c*per : (c+1)*per] {
			peaks[c] = max(peaks[c], v)
		}
	}
	for r := rows; r > 0; r-- {
		var sb strings.Builder
		for _, p := range peaks {
			if int(p)*rows/255 >= r {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Println(sb.String())
	}
	fmt.Println(strings.Repeat("-", columns))
}

func fatal(logger *slog.Logger, op string, err error) {
	logger.Error(op+" failed", "err", err)
	os.Exit(1)
}
