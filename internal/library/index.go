package library

import (
	"sync"

	"github.com/llehouerou/crate/internal/catalog"
)

// SongSource provides the current song list.
type SongSource interface {
	All() []*catalog.Song
}

// Index caches the albums and artists derived from a SongSource until
// Invalidate is called. Play statistics changes do not require invalidation.
type Index struct {
	source SongSource

	mu      sync.Mutex
	albums  []*Album
	artists []*Artist
	built   struct{ albums, artists bool }
}

// NewIndex creates an index over source.
func NewIndex(source SongSource) *Index {
	return &Index{source: source}
}

// Albums returns the cached albums, building them on first use.
func (x *Index) Albums() []*Album {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.albumsLocked()
}

func (x *Index) albumsLocked() []*Album {
	if !x.built.albums {
		x.albums = GroupAlbums(x.source.All())
		x.built.albums = true
	}
	return x.albums
}

// Artists returns the cached artists, building them (and the albums they
// depend on) on first use.
func (x *Index) Artists() []*Artist {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.built.artists {
		x.artists = GroupArtists(x.albumsLocked())
		x.built.artists = true
	}
	return x.artists
}

// Invalidate clears both caches.
func (x *Index) Invalidate() {
	x.mu.Lock()
	x.albums, x.artists = nil, nil
	x.built.albums, x.built.artists = false, false
	x.mu.Unlock()
}
