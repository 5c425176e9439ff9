// Package library derives albums and artists from the catalog's songs.
package library

import (
	"cmp"
	"slices"
	"strings"

	"github.com/llehouerou/crate/internal/catalog"
)

// Album groups the songs sharing a (title, artist) pair.
type Album struct {
	ID     int
	Title  string
	Artist string
	Songs  []*catalog.Song // sorted by disc then track
}

// FilterValue returns the text search matches against.
func (a *Album) FilterValue() string {
	return a.Title
}

func (a *Album) String() string {
	return a.Title
}

// Artist groups albums by artist name.
type Artist struct {
	Name   string
	Albums []*Album
}

// FilterValue returns the text search matches against.
func (a *Artist) FilterValue() string {
	return a.Name
}

func (a *Artist) String() string {
	return a.Name
}

type albumKey struct {
	title  string
	artist string
}

// GroupAlbums builds one Album per distinct (album, artist) pair, in the
// order pairs are first seen. Songs lacking either field are skipped.
func GroupAlbums(songs []*catalog.Song) []*Album {
	albums := make([]*Album, 0)
	byKey := make(map[albumKey]*Album)

	for _, s := range songs {
		if s == nil || s.Album == "" || s.Artist == "" {
			continue
		}
		key := albumKey{title: s.Album, artist: s.Artist}
		a, ok := byKey[key]
		if !ok {
			a = &Album{ID: len(albums), Title: s.Album, Artist: s.Artist}
			byKey[key] = a
			albums = append(albums, a)
		}
		a.Songs = append(a.Songs, s)
	}

	for _, a := range albums {
		catalog.SortSongs(a.Songs)
	}
	return albums
}

// GroupArtists builds one Artist per distinct album artist, in the order
// names are first seen. Albums without an artist are skipped.
func GroupArtists(albums []*Album) []*Artist {
	artists := make([]*Artist, 0)
	byName := make(map[string]*Artist)

	for _, a := range albums {
		if a == nil || a.Artist == "" {
			continue
		}
		artist, ok := byName[a.Artist]
		if !ok {
			artist = &Artist{Name: a.Artist}
			byName[a.Artist] = artist
			artists = append(artists, artist)
		}
		artist.Albums = append(artist.Albums, a)
	}
	return artists
}

var articles = []string{"The ", "A ", "An "}

// SortName strips one leading English article.
func SortName(name string) string {
	for _, article := range articles {
		if rest, ok := strings.CutPrefix(name, article); ok {
			return rest
		}
	}
	return name
}

// CompareArtistNames compares names ignoring a leading article.
func CompareArtistNames(a, b string) int {
	return cmp.Compare(SortName(a), SortName(b))
}

// SortArtists sorts in place by CompareArtistNames.
func SortArtists(artists []*Artist) {
	slices.SortStableFunc(artists, func(a, b *Artist) int {
		return CompareArtistNames(a.Name, b.Name)
	})
}
