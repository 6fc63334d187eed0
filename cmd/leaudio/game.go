package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/sqweek/dialog"

	"github.com/cbegin/leaudio-go"
	"github.com/cbegin/leaudio-go/internal/chrome"
	"github.com/cbegin/leaudio-go/internal/config"
	"github.com/cbegin/leaudio-go/internal/decode"
	"github.com/cbegin/leaudio-go/internal/visual"
)

const (
	appTitle   = "LeAudio"
	minWindowW = 1000
	minWindowH = 560

	margin       = 16
	buttonH      = 44
	chooseW      = 280
	transportW   = 190
	transportGap = 12
)

type pickResult struct {
	path string
	err  error
}

type game struct {
	cfg    config.Config
	logger *slog.Logger

	player   *leaudio.Player
	events   <-chan leaudio.PlaybackEvent
	sched    *visual.Scheduler
	canvas   *ebitenCanvas
	viewport visual.Viewport
	chrome   chrome.Chrome
	win      *ebitenWindow

	picks   chan pickResult
	picking bool
	dropDir string

	text  *labels
	tick  int
	viewW int
	viewH int
}

func newGame(cfg config.Config, style visual.Style, logger *slog.Logger) (*game, error) {
	g := &game{
		cfg:    cfg,
		logger: logger,
		sched:  visual.NewScheduler(),
		canvas: &ebitenCanvas{},
		win:    &ebitenWindow{},
		picks:  make(chan pickResult, 1),
		text:   newLabels(),
		viewW:  cfg.WindowWidth,
		viewH:  cfg.WindowHeight,
	}
	pl, err := leaudio.NewPlayer(cfg.SampleRate,
		leaudio.WithFFTSize(cfg.FFTSize),
		leaudio.WithLogger(logger),
		leaudio.WithVisualizer(g.sched, g.canvas, style),
	)
	if err != nil {
		return nil, err
	}
	g.player = pl
	g.events = pl.Watch()
	g.viewport.OnResize(func(w, h int) {
		r := layoutRects(w, h, g.cfg.Frameless).canvas
		g.canvas.resize(r.Dx(), r.Dy())
		g.logger.Debug("viewport resized", "width", w, "height", h)
	})
	if cfg.Frameless {
		g.chrome.Attach(g.win)
	}
	return g, nil
}

func (g *game) Update() error {
	g.tick++
	if g.win.closing {
		g.chrome.Detach()
		return ebiten.Termination
	}
	g.pollEvents()
	g.pollPicks()
	g.handleDrop()
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := layoutRects(g.viewW, g.viewH, g.cfg.Frameless)

	g.sched.RunFrame()
	if g.canvas.img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(l.canvas.Min.X), float64(l.canvas.Min.Y))
		screen.DrawImage(g.canvas.img, op)
	}

	if g.chrome.Attached() {
		g.drawTitleBar(screen, l.bar)
	} else {
		g.text.draw(screen, appTitle, margin, l.choose.Min.Y+(buttonH-lineH)/2, mutedText)
	}

	chooseLabel := "Choose Audio File"
	if g.picking {
		chooseLabel = "Choosing..."
	}
	g.text.drawButton(screen, l.choose, chooseLabel, panelColor, !g.picking)

	s, loaded := g.player.Session()
	maxChars := (g.viewW - 2*margin) / charW
	prompt, status := statusLines(s, loaded, maxChars)
	if prompt != "" {
		// Pulse between dim and full brightness, roughly once a second.
		a := 0.65 + 0.35*math.Sin(float64(g.tick)*2*math.Pi/float64(ebiten.TPS()))
		g.text.draw(screen, prompt, margin, l.status.Min.Y, color.NRGBA{0xff, 0xff, 0xff, uint8(a * 0xff)})
	}
	g.text.draw(screen, status, margin, l.status.Min.Y+lineH, mutedText)

	playFill := panelColor
	if loaded && s.IsPlaying {
		playFill = pressedColor
	}
	g.text.drawButton(screen, l.play, "Play", playFill, loaded)
	g.text.drawButton(screen, l.pause, "Pause", panelColor, loaded && s.IsPlaying)
	g.text.drawButton(screen, l.volumeDown, "Volume Down", panelColor, loaded && g.player.Volume() > leaudio.MinVolume)
	g.text.drawButton(screen, l.volumeUp, "Volume Up", panelColor, loaded && g.player.Volume() < leaudio.MaxVolume)
	g.text.draw(screen, fmt.Sprintf("Volume: %.1f", g.player.Volume()), l.volumeUp.Max.X+margin, l.volumeUp.Min.Y+(buttonH-lineH)/2, mutedText)
}

func (g *game) drawTitleBar(screen *ebiten.Image, bar image.Rectangle) {
	fillRect(screen, bar, titleBarColor)
	g.text.draw(screen, appTitle, margin/2, bar.Min.Y+(bar.Dy()-lineH)/2, mutedText)
	for _, b := range g.chrome.Buttons(g.viewW) {
		label, fill := "", titleBarColor
		switch b.Action {
		case chrome.ActionMinimize:
			label = "_"
		case chrome.ActionMaximize:
			label = "o"
		case chrome.ActionClose:
			label, fill = "x", closeColor
		}
		fillRect(screen, b.Rect, fill)
		g.text.drawCentered(screen, label, b.Rect, mutedText)
	}
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	w := max(outsideW, minWindowW)
	h := max(outsideH, minWindowH)
	g.viewW, g.viewH = w, h
	g.viewport.Observe(w, h)
	return w, h
}

func (g *game) Close() {
	g.player.Close()
	if g.dropDir != "" {
		_ = os.RemoveAll(g.dropDir)
	}
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			if ev.Kind == leaudio.EventPlaybackEnded {
				g.logger.Debug("track finished", "file", ev.URL)
			}
		default:
			return
		}
	}
}

func (g *game) pollPicks() {
	select {
	case r := <-g.picks:
		g.picking = false
		switch {
		case errors.Is(r.err, dialog.ErrCancelled):
			g.logger.Debug("file dialog cancelled")
		case r.err != nil:
			g.logger.Warn("file dialog failed", "err", r.err)
		default:
			g.loadFile(r.path)
		}
	default:
	}
}

func (g *game) handleDrop() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	if g.dropDir == "" {
		dir, err := os.MkdirTemp("", "leaudio-drop-")
		if err != nil {
			g.logger.Error("staging dropped file", "err", err)
			return
		}
		g.dropDir = dir
	}
	path, err := stageDropped(files, g.dropDir)
	if err != nil {
		g.logger.Warn("ignoring drop", "err", err)
		return
	}
	g.loadFile(path)
}

func (g *game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.player.TogglePlayback()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.player.VolumeUp()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.player.VolumeDown()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.openDialog()
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	g.win.drag(mx, my, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	l := layoutRects(g.viewW, g.viewH, g.cfg.Frameless)
	if g.chrome.Attached() {
		if g.chrome.Click(mx, my, g.viewW) {
			return
		}
		if pointInRect(mx, my, l.bar) {
			g.win.beginDrag(mx, my)
			return
		}
	}
	switch {
	case pointInRect(mx, my, l.choose):
		g.openDialog()
	case pointInRect(mx, my, l.play):
		g.player.Play()
	case pointInRect(mx, my, l.pause):
		g.player.Pause()
	case pointInRect(mx, my, l.volumeDown):
		g.player.VolumeDown()
	case pointInRect(mx, my, l.volumeUp):
		g.player.VolumeUp()
	}
}

// openDialog shows the native picker off the game loop. The choice arrives
// through g.picks.
func (g *game) openDialog() {
	if g.picking {
		return
	}
	g.picking = true
	startDir := g.cfg.MusicDir
	go func() {
		b := dialog.File().Title("Choose Audio File").Filter("Audio files", decode.Extensions...)
		if st, err := os.Stat(startDir); err == nil && st.IsDir() {
			b = b.SetStartDir(startDir)
		}
		path, err := b.Load()
		g.picks <- pickResult{path: path, err: err}
	}()
}

func (g *game) loadFile(path string) {
	if err := g.player.Open(path); err != nil {
		g.alert(leaudio.SetupFailureMessage)
	}
}

func (g *game) alert(msg string) {
	go func() {
		err := zenity.Error(msg, zenity.Title(appTitle))
		if err != nil && !errors.Is(err, zenity.ErrCanceled) {
			g.logger.Warn("alert failed", "err", err)
		}
	}()
}

// statusLines returns the prompt shown before the first Play (empty
// otherwise) and the line naming the loaded file.
func statusLines(s leaudio.Session, loaded bool, maxChars int) (prompt, status string) {
	if !loaded {
		return "", "Choose an audio file to begin"
	}
	prefix := "Currently Paused: "
	if s.IsPlaying {
		prefix = "Currently Playing: "
	}
	if !s.IsPlaying && !s.HasEverPlayed {
		prompt = "Press Play to Start the Track"
	}
	return prompt, prefix + shortenMiddle(s.DisplayName, max(8, maxChars-len(prefix)))
}

// stageDropped copies the first regular file of a drop into dir and returns
// its path. The copy keeps the dropped name so format sniffing and the
// fallback display name still work.
func stageDropped(files fs.FS, dir string) (string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		src, err := files.Open(e.Name())
		if err != nil {
			return "", err
		}
		defer src.Close()
		dst := filepath.Join(dir, e.Name())
		out, err := os.Create(dst)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			return "", fmt.Errorf("copy %s: %w", e.Name(), err)
		}
		if err := out.Close(); err != nil {
			return "", err
		}
		return dst, nil
	}
	return "", errors.New("drop contained no regular file")
}

type uiLayout struct {
	bar        image.Rectangle
	choose     image.Rectangle
	canvas     image.Rectangle
	status     image.Rectangle
	play       image.Rectangle
	pause      image.Rectangle
	volumeDown image.Rectangle
	volumeUp   image.Rectangle
}

func layoutRects(viewW, viewH int, frameless bool) uiLayout {
	var l uiLayout
	top := 0
	if frameless {
		l.bar = image.Rect(0, 0, viewW, chrome.BarHeight)
		top = chrome.BarHeight
	}
	chooseX := margin
	if !frameless {
		chooseX += len(appTitle)*charW + 2*margin
	}
	l.choose = image.Rect(chooseX, top+margin, chooseX+chooseW, top+margin+buttonH)

	rowY := viewH - margin - buttonH
	x := margin
	row := make([]image.Rectangle, 4)
	for i := range row {
		row[i] = image.Rect(x, rowY, x+transportW, rowY+buttonH)
		x += transportW + transportGap
	}
	l.play, l.pause, l.volumeDown, l.volumeUp = row[0], row[1], row[2], row[3]

	statusY := rowY - margin - 2*lineH
	l.status = image.Rect(margin, statusY, viewW-margin, statusY+2*lineH)
	l.canvas = image.Rect(0, l.choose.Max.Y+margin, viewW, max(l.choose.Max.Y+margin+1, statusY-margin))
	return l
}
