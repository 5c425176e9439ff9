package tags

import (
	"github.com/Sorrow446/go-mp4tag"
	"go.senan.xyz/taglib"
)

// readM4AFallback is used when dhowden/tag can't parse an MP4 container
// (ffmpeg-created files mostly). go-mp4tag is tried first, TagLib last.
func readM4AFallback(path string) (*Tag, error) {
	if t, err := readM4AWithMP4Tag(path); err == nil {
		return t, nil
	}
	return readWithTaglib(path)
}

func readM4AWithMP4Tag(path string) (*Tag, error) {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return nil, err
	}
	defer mp4.Close()

	raw, err := mp4.Read()
	if err != nil {
		return nil, err
	}

	t := &Tag{
		Path:        path,
		Title:       raw.Title,
		Artist:      raw.Artist,
		AlbumArtist: raw.AlbumArtist,
		Album:       raw.Album,
		Genre:       raw.CustomGenre,
		Date:        raw.Date,
		TrackNumber: max(int(raw.TrackNumber), 0),
		TotalTracks: max(int(raw.TrackTotal), 0),
		DiscNumber:  max(int(raw.DiscNumber), 0),
		TotalDiscs:  max(int(raw.DiscTotal), 0),
	}
	t.fillAlbumArtist()
	return t, nil
}

// readWithTaglib reads tags through TagLib. It serves WAV files and is the
// last resort for MP4 containers.
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tags := taglibTags(rawTags)

	trackNum, trackTotal := parseNumberPair(tags.get(taglib.TrackNumber))
	discNum, discTotal := parseNumberPair(tags.get(taglib.DiscNumber))

	// Some taggers store totals as separate atoms
	if trackTotal == 0 {
		trackTotal = tags.getInt("TOTALTRACKS")
	}
	if discTotal == 0 {
		discTotal = tags.getInt("TOTALDISCS")
	}

	t := &Tag{
		Path:        path,
		Title:       tags.get(taglib.Title),
		Artist:      tags.get(taglib.Artist),
		AlbumArtist: tags.get(taglib.AlbumArtist),
		Album:       tags.get(taglib.Album),
		Genre:       tags.get(taglib.Genre),
		Date:        tags.get(taglib.Date),
		TrackNumber: trackNum,
		TotalTracks: trackTotal,
		DiscNumber:  discNum,
		TotalDiscs:  discTotal,
	}
	t.fillAlbumArtist()
	return t, nil
}
