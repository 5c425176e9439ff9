// Command tagdump prints what the tag extractor reads from audio files.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/llehouerou/crate/internal/tags"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s FILE...", filepath.Base(os.Args[0]))
	}

	failed := false
	for _, path := range os.Args[1:] {
		if !tags.IsMusicFile(path) {
			log.Printf("%s: unsupported extension", path)
			failed = true
			continue
		}

		info, err := tags.Extract(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed = true
			continue
		}

		log.Printf("%s", path)
		log.Printf("  title:        %q", info.Title)
		log.Printf("  artist:       %q", info.Artist)
		log.Printf("  album artist: %q", info.AlbumArtist)
		log.Printf("  album:        %q", info.Album)
		log.Printf("  genre:        %q", info.Genre)
		log.Printf("  track:        %d/%d", info.TrackNumber, info.TotalTracks)
		log.Printf("  disc:         %d/%d", info.DiscNumber, info.TotalDiscs)
		log.Printf("  date:         %q (year %d)", info.Date, info.Year())
		log.Printf("  format:       %s, %d Hz, %s", info.Format, info.SampleRate, info.Duration)
	}

	if failed {
		os.Exit(1)
	}
}
