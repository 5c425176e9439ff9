// Package tags extracts embedded metadata and stream length from the audio
// files the catalog accepts: MP3, MP4/M4A/M4V and WAV.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File extensions accepted by the catalog.
const (
	ExtMP3 = ".mp3"
	ExtMP4 = ".mp4"
	ExtM4A = ".m4a"
	ExtM4V = ".m4v"
	ExtWAV = ".wav"
)

// Tag contains the metadata read from a music file.
// String fields are left blank when the file does not carry them.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string

	TrackNumber int
	TotalTracks int
	DiscNumber  int
	TotalDiscs  int

	Date string // YYYY-MM-DD or YYYY
}

// Year derives the year from the Date field.
// Returns 0 if Date is empty or cannot be parsed.
func (t *Tag) Year() int {
	if t.Date == "" {
		return 0
	}
	year := t.Date
	if len(year) > 4 {
		year = year[:4]
	}
	y, _ := strconv.Atoi(year)
	return y
}

// fillAlbumArtist applies the album-artist fallback shared by every reader.
func (t *Tag) fillAlbumArtist() {
	t.Title = strings.TrimSpace(t.Title)
	t.Artist = strings.TrimSpace(t.Artist)
	t.Album = strings.TrimSpace(t.Album)
	t.AlbumArtist = strings.TrimSpace(t.AlbumArtist)
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
}

// AudioInfo contains audio stream properties (not tags).
type AudioInfo struct {
	Duration   time.Duration
	Format     string // MP3, AAC, ALAC, M4A, WAV
	SampleRate int
}

// FileInfo combines Tag and AudioInfo for a complete file description.
type FileInfo struct {
	Tag
	AudioInfo
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtMP4, ExtM4A, ExtM4V, ExtWAV:
		return true
	}
	return false
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// getInt returns the first value as an integer, or 0 if not found or invalid.
func (t taglibTags) getInt(key string) int {
	n, _ := parseNumberPair(t.get(key))
	return n
}

// parseNumberPair parses a track/disc number that may be "N" or "N/M".
// Blank, "null" and otherwise unparsable parts yield 0.
func parseNumberPair(s string) (num, total int) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return max(num, 0), max(total, 0)
}
