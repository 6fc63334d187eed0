package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/cbegin/leaudio-go/internal/config"
	"github.com/cbegin/leaudio-go/internal/logging"
	"github.com/cbegin/leaudio-go/internal/visual"
)

func main() {
	cfg := config.Load()
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "output sample rate")
	flag.IntVar(&cfg.FFTSize, "fft-size", cfg.FFTSize, "analyser transform size (power of two)")
	flag.StringVar(&cfg.BarMode, "bar-mode", cfg.BarMode, "skip-zero|draw-all")
	flag.StringVar(&cfg.Palette, "palette", cfg.Palette, "gradient|accent")
	flag.BoolVar(&cfg.Frameless, "frameless", cfg.Frameless, "draw our own title bar instead of the system one")
	flag.IntVar(&cfg.WindowWidth, "width", cfg.WindowWidth, "initial window width")
	flag.IntVar(&cfg.WindowHeight, "height", cfg.WindowHeight, "initial window height")
	flag.StringVar(&cfg.MusicDir, "music-dir", cfg.MusicDir, "directory the file dialog starts in")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	style, err := visual.ParseStyle(cfg.BarMode, cfg.Palette)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	g, err := newGame(cfg, style, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer g.Close()

	if flag.NArg() > 0 {
		p, err := filepath.Abs(flag.Arg(0))
		if err != nil {
			logger.Error("resolve path", "path", flag.Arg(0), "err", err)
			os.Exit(1)
		}
		g.loadFile(p)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowDecorated(!cfg.Frameless)
	ebiten.SetWindowTitle(appTitle)
	logger.Info("starting", "sample_rate", cfg.SampleRate, "fft_size", cfg.FFTSize, "frameless", cfg.Frameless)
	if err := ebiten.RunGame(g); err != nil {
		logger.Error("game loop", "err", err)
	}
}
