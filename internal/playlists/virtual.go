package playlists

import (
	"cmp"
	"slices"

	"github.com/llehouerou/crate/internal/catalog"
)

// VirtualLimit caps the length of the virtual playlists.
const VirtualLimit = 100

// MostPlayedSongs returns played songs by descending play count.
func MostPlayedSongs(songs []*catalog.Song) []*catalog.Song {
	played := playedSongs(songs)
	slices.SortStableFunc(played, func(a, b *catalog.Song) int {
		return cmp.Compare(b.PlayCount, a.PlayCount)
	})
	return truncate(played)
}

// RecentlyPlayedSongs returns played songs by descending play date.
// Songs with a count but no date sort last.
func RecentlyPlayedSongs(songs []*catalog.Song) []*catalog.Song {
	played := playedSongs(songs)
	slices.SortStableFunc(played, func(a, b *catalog.Song) int {
		switch {
		case a.PlayDate == nil && b.PlayDate == nil:
			return 0
		case a.PlayDate == nil:
			return 1
		case b.PlayDate == nil:
			return -1
		}
		return b.PlayDate.Compare(*a.PlayDate)
	})
	return truncate(played)
}

func playedSongs(songs []*catalog.Song) []*catalog.Song {
	played := make([]*catalog.Song, 0)
	for _, s := range songs {
		if s != nil && s.PlayCount > 0 {
			played = append(played, s)
		}
	}
	return played
}

func truncate(songs []*catalog.Song) []*catalog.Song {
	if len(songs) > VirtualLimit {
		return songs[:VirtualLimit]
	}
	return songs
}
