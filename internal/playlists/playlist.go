// Package playlists manages user playlists stored in the catalog file and the
// two virtual playlists computed from play statistics.
package playlists

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/llehouerou/crate/internal/catalog"
)

// Kind distinguishes stored playlists from computed ones.
type Kind int

const (
	Regular Kind = iota
	MostPlayed
	RecentlyPlayed
)

func (k Kind) String() string {
	switch k {
	case Regular:
		return "regular"
	case MostPlayed:
		return "most-played"
	case RecentlyPlayed:
		return "recently-played"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel ids of the virtual playlists.
const (
	RecentlyPlayedID = -1
	MostPlayedID     = -2
)

const (
	MostPlayedTitle     = "Most Played"
	RecentlyPlayedTitle = "Recently Played"

	DefaultPlaceholder = "Add songs to this playlist by dragging items to the sidebar\n" +
		"or by clicking the Add to Playlist button"
	NoPlaysPlaceholder = "You have not played any songs yet"
)

var (
	// ErrVirtualPlaylist is returned when editing a computed playlist.
	ErrVirtualPlaylist = errors.New("virtual playlists cannot be edited")
	// ErrPlaylistNotFound is returned when a playlist has no node in the file.
	ErrPlaylistNotFound = errors.New("playlist not found in catalog file")
)

// Playlist is either a stored, ordered list of songs or a virtual list
// recomputed from a song source on every read.
type Playlist struct {
	ID          int
	Title       string
	Kind        Kind
	Placeholder string

	mu     sync.Mutex
	songs  []*catalog.Song
	source SongSource    // virtual kinds
	file   *catalog.File // nil: memory only
}

// New returns an empty regular playlist that is not persisted.
func New(id int, title string) *Playlist {
	return &Playlist{ID: id, Title: title, Kind: Regular, Placeholder: DefaultPlaceholder}
}

func newVirtual(kind Kind, source SongSource) *Playlist {
	p := &Playlist{Kind: kind, Placeholder: NoPlaysPlaceholder, source: source}
	switch kind {
	case MostPlayed:
		p.ID, p.Title = MostPlayedID, MostPlayedTitle
	case RecentlyPlayed:
		p.ID, p.Title = RecentlyPlayedID, RecentlyPlayedTitle
	case Regular:
	}
	return p
}

func (p *Playlist) String() string {
	return p.Title
}

// IsVirtual reports whether membership is computed.
func (p *Playlist) IsVirtual() bool {
	return p.Kind != Regular
}

// Songs returns the playlist contents. Virtual playlists are recomputed from
// the full song list on every call.
func (p *Playlist) Songs() []*catalog.Song {
	switch p.Kind {
	case MostPlayed:
		return MostPlayedSongs(p.source.All())
	case RecentlyPlayed:
		return RecentlyPlayedSongs(p.source.All())
	case Regular:
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.songs)
}

// Len returns the number of songs.
func (p *Playlist) Len() int {
	return len(p.Songs())
}

// Contains reports whether a song with the given id is in the playlist.
func (p *Playlist) Contains(songID int) bool {
	return slices.ContainsFunc(p.Songs(), func(s *catalog.Song) bool { return s.ID == songID })
}

// AddSong appends song unless it is already present. For stored playlists the
// change is written to the catalog file; if that fails the append is undone
// and the error returned.
func (p *Playlist) AddSong(song *catalog.Song) error {
	if p.IsVirtual() {
		return ErrVirtualPlaylist
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if slices.ContainsFunc(p.songs, func(s *catalog.Song) bool { return s.ID == song.ID }) {
		return nil
	}
	p.songs = append(p.songs, song)

	if p.file == nil {
		return nil
	}
	err := p.file.Update(func(doc *catalog.Document) error {
		node := doc.Playlist(p.ID)
		if node == nil {
			return fmt.Errorf("%w: %d", ErrPlaylistNotFound, p.ID)
		}
		node.SongIDs = append(node.SongIDs, song.ID)
		return nil
	})
	if err != nil {
		p.songs = p.songs[:len(p.songs)-1]
		return err
	}
	return nil
}

// RemoveSong removes the song with the given id. Removing an absent song is
// a no-op. A failed write restores the song.
func (p *Playlist) RemoveSong(songID int) error {
	if p.IsVirtual() {
		return ErrVirtualPlaylist
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := slices.IndexFunc(p.songs, func(s *catalog.Song) bool { return s.ID == songID })
	if idx < 0 {
		return nil
	}
	removed := p.songs[idx]
	p.songs = slices.Delete(p.songs, idx, idx+1)

	if p.file == nil {
		return nil
	}
	err := p.file.Update(func(doc *catalog.Document) error {
		node := doc.Playlist(p.ID)
		if node == nil {
			return fmt.Errorf("%w: %d", ErrPlaylistNotFound, p.ID)
		}
		node.SongIDs = slices.DeleteFunc(node.SongIDs, func(id int) bool { return id == songID })
		return nil
	})
	if err != nil {
		p.songs = slices.Insert(p.songs, idx, removed)
		return err
	}
	return nil
}
