// Package catalog owns the authoritative song list and its persisted XML file.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// PlayRecorder is notified after a play is counted.
type PlayRecorder interface {
	RecordPlay(song Record, at time.Time) error
}

// Store is the catalog's song collection. Songs are loaded lazily from the
// File at most once per cache generation.
type Store struct {
	file     *File
	logger   hclog.Logger
	now      func() time.Time
	recorder PlayRecorder

	mu     sync.RWMutex
	songs  []*Song
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l hclog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("catalog")
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPlayRecorder registers a journal for plays.
func WithPlayRecorder(r PlayRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// NewStore creates a store over file.
func NewStore(file *File, opts ...Option) *Store {
	s := &Store{
		file:   file,
		logger: hclog.NewNullLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File returns the underlying persisted file.
func (s *Store) File() *File {
	return s.file
}

// Load reads the songs from disk. Missing, unparsable or structurally invalid
// files produce an empty list; the cause is logged.
func (s *Store) Load() []*Song {
	doc, err := s.file.Read()
	if err != nil {
		s.logger.Warn("catalog unreadable, starting empty", "path", s.file.Path(), "error", err)
		return []*Song{}
	}
	records, err := doc.Records()
	if err != nil {
		s.logger.Warn("catalog invalid, starting empty", "path", s.file.Path(), "error", err)
		return []*Song{}
	}
	songs := make([]*Song, len(records))
	for i := range records {
		songs[i] = NewSong(records[i])
	}
	return songs
}

// All returns the cached songs, loading them on first use.
func (s *Store) All() []*Song {
	s.mu.RLock()
	if s.loaded {
		songs := s.songs
		s.mu.RUnlock()
		return songs
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.songs = s.Load()
		s.loaded = true
	}
	return s.songs
}

// Invalidate drops the cache; the next All reloads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.songs = nil
	s.loaded = false
	s.mu.Unlock()
}

// ByID returns the song with the given id.
func (s *Store) ByID(id int) (*Song, bool) {
	for _, song := range s.All() {
		if song.ID == id {
			return song, true
		}
	}
	return nil, false
}

// ByTitle returns the first song whose title equals title.
func (s *Store) ByTitle(title string) (*Song, bool) {
	for _, song := range s.All() {
		if song.Title == title {
			return song, true
		}
	}
	return nil, false
}

// ByIDs resolves ids in order, dropping unknown ones.
func (s *Store) ByIDs(ids []int) []*Song {
	byID := make(map[int]*Song)
	for _, song := range s.All() {
		byID[song.ID] = song
	}
	songs := make([]*Song, 0, len(ids))
	for _, id := range ids {
		if song, ok := byID[id]; ok {
			songs = append(songs, song)
		}
	}
	return songs
}

// RecordPlay counts a play of song and persists the change. Persistence is
// best-effort: failures are logged and the in-memory count stays.
func (s *Store) RecordPlay(song *Song) {
	at := s.now()

	s.mu.Lock()
	song.PlayCount++
	song.PlayDate = &at
	rec := song.Record()
	s.mu.Unlock()

	err := s.file.Update(func(doc *Document) error {
		node := doc.Song(song.ID)
		if node == nil {
			return fmt.Errorf("song %d not in catalog file", song.ID)
		}
		// read under the file lock so the last writer stores the latest count
		s.mu.RLock()
		count, last := song.PlayCount, *song.PlayDate
		s.mu.RUnlock()
		node.SetPlay(count, last)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to persist play count", "song", song.ID, "error", err)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordPlay(rec, at); err != nil {
			s.logger.Warn("failed to journal play", "song", song.ID, "error", err)
		}
	}
}

// NextID returns the id for the next new song: one past both the recorded
// last id and every id on disk, so ids of removed songs are never reused.
func (s *Store) NextID() (int, error) {
	doc, err := s.file.Read()
	if err != nil {
		return 0, err
	}
	next := 0
	if doc.Header.Path != "" {
		next = doc.Header.LastID + 1
	}
	for _, node := range doc.Songs.Items {
		if id, err := strconv.Atoi(strings.TrimSpace(node.ID)); err == nil {
			next = max(next, id+1)
		}
	}
	return next, nil
}

// Header returns the library header from disk.
func (s *Store) Header() (Header, error) {
	doc, err := s.file.Read()
	if err != nil {
		return Header{}, err
	}
	return doc.Header, nil
}

// Records returns the raw persisted records.
func (s *Store) Records() ([]Record, error) {
	doc, err := s.file.Read()
	if err != nil {
		return nil, err
	}
	return doc.Records()
}

// ReplaceSongs rewrites the song section and header after an import.
// Playlists and the now-playing list are kept. Play statistics already on
// disk for a location win over those in records, so plays counted while an
// import was running survive it. LastID never decreases.
func (s *Store) ReplaceSongs(root string, records []Record) error {
	err := s.file.Rewrite(func(doc *Document) error {
		plays := make(map[string]SongNode, len(doc.Songs.Items))
		for _, node := range doc.Songs.Items {
			plays[node.Location] = node
		}
		lastID := maxID(records, -1)
		if doc.Header.Path != "" {
			lastID = max(lastID, doc.Header.LastID)
		}

		doc.SetRecords(records)
		for i := range doc.Songs.Items {
			node := &doc.Songs.Items[i]
			if prev, ok := plays[node.Location]; ok {
				node.PlayCount = prev.PlayCount
				node.PlayDate = prev.PlayDate
			}
		}
		doc.Header = Header{
			Path:    root,
			FileNum: len(records),
			LastID:  lastID,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	s.Invalidate()
	return nil
}

// AppendSongs adds records to the song section.
func (s *Store) AppendSongs(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	err := s.file.Update(func(doc *Document) error {
		for i := range records {
			doc.Songs.Items = append(doc.Songs.Items, NewSongNode(records[i]))
		}
		doc.Header.FileNum = len(doc.Songs.Items)
		doc.Header.LastID = max(doc.Header.LastID, maxID(records, -1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	s.Invalidate()
	return nil
}

// NowPlaying returns the saved now-playing list. Unreadable content gives an
// empty list.
func (s *Store) NowPlaying() []*Song {
	doc, err := s.file.Read()
	if err != nil {
		s.logger.Warn("now playing list unreadable", "error", err)
		return []*Song{}
	}
	return s.ByIDs(doc.NowPlaying.SongIDs())
}

// SaveNowPlaying persists the ids of songs as the now-playing list.
func (s *Store) SaveNowPlaying(songs []*Song) error {
	ids := make([]int, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}
	return s.file.Update(func(doc *Document) error {
		doc.NowPlaying.SetSongIDs(ids)
		return nil
	})
}

func maxID(records []Record, floor int) int {
	m := floor
	for i := range records {
		m = max(m, records[i].ID)
	}
	return m
}
