package decode

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// DisplayName returns "Artist - Title" from the file's tags, the bare title if
// there is no artist, or the file name when the file carries no usable tags.
func DisplayName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return filepath.Base(path)
	}
	defer f.Close()
	return displayNameFrom(f, path)
}

func displayNameFrom(r io.ReadSeeker, path string) string {
	meta, err := tag.ReadFrom(r)
	if err != nil {
		return filepath.Base(path)
	}
	title := strings.TrimSpace(meta.Title())
	artist := strings.TrimSpace(meta.Artist())
	switch {
	case title == "":
		return filepath.Base(path)
	case artist == "":
		return title
	default:
		return artist + " - " + title
	}
}
