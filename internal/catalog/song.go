package catalog

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Fallbacks applied when a song is constructed without artist or album.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Record is a song as stored in the catalog file. Blank strings stay blank;
// display fallbacks are applied only when a Song is built from it.
type Record struct {
	ID          int
	Title       string
	Artist      string
	Album       string
	Length      time.Duration
	TrackNumber int
	DiscNumber  int
	PlayCount   int
	PlayDate    *time.Time
	Location    string
}

// Song is a catalog entry.
type Song struct {
	ID          int
	Title       string
	Artist      string
	Album       string
	Length      time.Duration
	TrackNumber int
	DiscNumber  int
	PlayCount   int
	PlayDate    *time.Time // nil when never played
	Location    string

	// UI state, never persisted
	Playing  bool
	Selected bool
}

// NewSong builds a Song from a record, applying the title, artist and album
// fallbacks.
func NewSong(r Record) *Song {
	s := &Song{
		ID:          r.ID,
		Title:       strings.TrimSpace(r.Title),
		Artist:      strings.TrimSpace(r.Artist),
		Album:       strings.TrimSpace(r.Album),
		Length:      r.Length,
		TrackNumber: r.TrackNumber,
		DiscNumber:  r.DiscNumber,
		PlayCount:   max(r.PlayCount, 0),
		Location:    r.Location,
	}
	if r.PlayDate != nil {
		d := *r.PlayDate
		s.PlayDate = &d
	}
	if s.Title == "" {
		s.Title = titleFromLocation(r.Location)
	}
	if s.Artist == "" {
		s.Artist = UnknownArtist
	}
	if s.Album == "" {
		s.Album = UnknownAlbum
	}
	return s
}

// Record returns the persisted form of the song.
func (s *Song) Record() Record {
	r := Record{
		ID:          s.ID,
		Title:       s.Title,
		Artist:      s.Artist,
		Album:       s.Album,
		Length:      s.Length,
		TrackNumber: s.TrackNumber,
		DiscNumber:  s.DiscNumber,
		PlayCount:   s.PlayCount,
		Location:    s.Location,
	}
	if s.PlayDate != nil {
		d := *s.PlayDate
		r.PlayDate = &d
	}
	return r
}

// LengthSeconds returns the length truncated to whole seconds.
func (s *Song) LengthSeconds() int {
	return int(s.Length / time.Second)
}

// LengthString formats the length as M:SS.
func (s *Song) LengthString() string {
	secs := s.LengthSeconds()
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FilterValue returns the text search matches against.
func (s *Song) FilterValue() string {
	return s.Title
}

func (s *Song) String() string {
	return s.Title
}

// CompareSongs orders songs by disc then track number.
func CompareSongs(a, b *Song) int {
	if c := cmp.Compare(a.DiscNumber, b.DiscNumber); c != 0 {
		return c
	}
	return cmp.Compare(a.TrackNumber, b.TrackNumber)
}

// SortSongs sorts in place by CompareSongs, keeping input order for ties.
func SortSongs(songs []*Song) {
	slices.SortStableFunc(songs, CompareSongs)
}

func titleFromLocation(location string) string {
	if location == "" {
		return ""
	}
	base := filepath.Base(location)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
