package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Extractor reads everything the catalog needs from one file.
type Extractor interface {
	Extract(path string) (*FileInfo, error)
}

// Default is the Extractor backed by Extract.
var Default Extractor = defaultExtractor{}

type defaultExtractor struct{}

func (defaultExtractor) Extract(path string) (*FileInfo, error) {
	return Extract(path)
}

// Read reads tag metadata from a music file.
// It returns only tag metadata, not audio stream properties.
func Read(path string) (*Tag, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ExtWAV {
		// dhowden/tag has no RIFF support
		return readWithTaglib(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch ext {
		case ExtMP3:
			// dhowden/tag rejects untagged files and some UTF-16 frames
			return readMP3WithID3v2Fallback(path)
		case ExtM4A, ExtMP4, ExtM4V:
			return readM4AFallback(path)
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}

	track, totalTracks := m.Track()
	disc, totalDiscs := m.Disc()

	t := &Tag{
		Path:        path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		Date:        yearToDate(m.Year()),
		TrackNumber: track,
		TotalTracks: totalTracks,
		DiscNumber:  disc,
		TotalDiscs:  totalDiscs,
	}
	t.fillAlbumArtist()
	return t, nil
}

// Extract reads tags and stream length. Tag failures are returned;
// a file whose length cannot be determined is reported with zero duration.
func Extract(path string) (*FileInfo, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}

	audio, err := ReadAudioInfo(path)
	if err != nil {
		audio = &AudioInfo{Format: formatFromExt(path)}
	}

	return &FileInfo{
		Tag:       *t,
		AudioInfo: *audio,
	}, nil
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func formatFromExt(path string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}
