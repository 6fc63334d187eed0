package main

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/leaudio-go"
	"github.com/cbegin/leaudio-go/internal/chrome"
)

func TestStatusLines(t *testing.T) {
	tests := []struct {
		name       string
		s          leaudio.Session
		loaded     bool
		wantPrompt string
		want       string
	}{
		{name: "nothing loaded", want: "Choose an audio file to begin"},
		{name: "never played", s: leaudio.Session{DisplayName: "song.mp3"}, loaded: true, wantPrompt: "Press Play to Start the Track", want: "Currently Paused: song.mp3"},
		{name: "playing", s: leaudio.Session{DisplayName: "song.mp3", IsPlaying: true, HasEverPlayed: true}, loaded: true, want: "Currently Playing: song.mp3"},
		{name: "paused", s: leaudio.Session{DisplayName: "song.mp3", HasEverPlayed: true}, loaded: true, want: "Currently Paused: song.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, status := statusLines(tt.s, tt.loaded, 80)
			assert.Equal(t, tt.wantPrompt, prompt)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestStatusLinesShortensLongNames(t *testing.T) {
	s := leaudio.Session{DisplayName: "A Very Long Artist Name - An Even Longer Track Title", IsPlaying: true}
	_, got := statusLines(s, true, 40)
	assert.LessOrEqual(t, len([]rune(got)), 40)
	assert.Contains(t, got, "...")
}

func TestLayoutRects(t *testing.T) {
	l := layoutRects(1100, 720, true)
	assert.Equal(t, chrome.BarHeight, l.bar.Dy())
	assert.GreaterOrEqual(t, l.choose.Min.Y, chrome.BarHeight)
	assert.Less(t, l.choose.Max.Y, l.canvas.Min.Y)
	assert.Less(t, l.canvas.Max.Y, l.status.Min.Y)
	assert.Less(t, l.status.Max.Y, l.play.Min.Y)
	assert.Equal(t, 1100, l.canvas.Dx())
	assert.False(t, l.play.Overlaps(l.pause))
	assert.False(t, l.volumeDown.Overlaps(l.volumeUp))

	decorated := layoutRects(1100, 720, false)
	assert.True(t, decorated.bar.Empty())
	assert.Greater(t, decorated.canvas.Dy(), l.canvas.Dy())
}

func TestStageDroppedCopiesFirstFile(t *testing.T) {
	files := fstest.MapFS{
		"covers":    &fstest.MapFile{Mode: os.ModeDir},
		"track.mp3": &fstest.MapFile{Data: []byte("ID3 payload")},
	}
	dir := t.TempDir()

	path, err := stageDropped(files, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "track.mp3"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 payload", string(data))
}

func TestStageDroppedWithoutFiles(t *testing.T) {
	_, err := stageDropped(fstest.MapFS{}, t.TempDir())
	assert.Error(t, err)
}

func TestShortenMiddle(t *testing.T) {
	assert.Equal(t, "short", shortenMiddle("short", 10))
	assert.Equal(t, "abc...xyz", shortenMiddle("abcdefghijklmnopqrstuvwxyz", 9))
}
