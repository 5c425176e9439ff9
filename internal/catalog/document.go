package catalog

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlayDateLayout is the local, zone-less timestamp stored in <playDate>.
const PlayDateLayout = "2006-01-02T15:04:05"

// Document is the whole catalog file.
type Document struct {
	XMLName    xml.Name       `xml:"library"`
	Header     Header         `xml:"musicLibrary"`
	Songs      SongList       `xml:"songs"`
	Playlists  PlaylistList   `xml:"playlists"`
	NowPlaying NowPlayingList `xml:"nowPlayingList"`
}

// Header describes the last import.
type Header struct {
	Path    string `xml:"path"`
	FileNum int    `xml:"fileNum"`
	LastID  int    `xml:"lastId"`
}

// SongList wraps <songs> so the element is written even when empty.
type SongList struct {
	Items []SongNode `xml:"song"`
}

// SongNode is one <song>. Numeric fields are kept as text so that blank or
// "null" values written by older versions decode as zero instead of failing.
type SongNode struct {
	ID          string `xml:"id"`
	Title       string `xml:"title"`
	Artist      string `xml:"artist"`
	Album       string `xml:"album"`
	Length      string `xml:"length"`
	TrackNumber string `xml:"trackNumber"`
	DiscNumber  string `xml:"discNumber"`
	PlayCount   string `xml:"playCount"`
	PlayDate    string `xml:"playDate"`
	Location    string `xml:"location"`
}

// PlaylistList wraps <playlists>.
type PlaylistList struct {
	Items []PlaylistNode `xml:"playlist"`
}

// PlaylistNode is one user playlist.
type PlaylistNode struct {
	ID      int    `xml:"id,attr"`
	Title   string `xml:"title,attr"`
	SongIDs []int  `xml:"songId"`
}

// NowPlayingList holds the queue restored at next launch. Children other
// than <id> are ignored.
type NowPlayingList struct {
	IDs []string `xml:"id"`
}

// SongIDs returns the parsable ids in order.
func (n NowPlayingList) SongIDs() []int {
	ids := make([]int, 0, len(n.IDs))
	for _, raw := range n.IDs {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// SetSongIDs replaces the list.
func (n *NowPlayingList) SetSongIDs(ids []int) {
	n.IDs = make([]string, len(ids))
	for i, id := range ids {
		n.IDs[i] = strconv.Itoa(id)
	}
}

// Playlist returns the node with the given id, or nil.
func (d *Document) Playlist(id int) *PlaylistNode {
	for i := range d.Playlists.Items {
		if d.Playlists.Items[i].ID == id {
			return &d.Playlists.Items[i]
		}
	}
	return nil
}

// Song returns the node with the given id, or nil.
func (d *Document) Song(id int) *SongNode {
	want := strconv.Itoa(id)
	for i := range d.Songs.Items {
		if strings.TrimSpace(d.Songs.Items[i].ID) == want {
			return &d.Songs.Items[i]
		}
	}
	return nil
}

// Records decodes every song. An unparsable id is a structural error.
func (d *Document) Records() ([]Record, error) {
	records := make([]Record, 0, len(d.Songs.Items))
	for i := range d.Songs.Items {
		r, err := d.Songs.Items[i].Record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// SetRecords replaces the song section.
func (d *Document) SetRecords(records []Record) {
	d.Songs.Items = make([]SongNode, len(records))
	for i := range records {
		d.Songs.Items[i] = NewSongNode(records[i])
	}
}

// NewSongNode encodes a record. Blank strings are written as an empty
// element pair (<artist></artist>), which readers treat the same as <artist/>.
func NewSongNode(r Record) SongNode {
	n := SongNode{
		ID:          strconv.Itoa(r.ID),
		Title:       r.Title,
		Artist:      r.Artist,
		Album:       r.Album,
		Length:      strconv.Itoa(int(r.Length / time.Second)),
		TrackNumber: strconv.Itoa(r.TrackNumber),
		DiscNumber:  strconv.Itoa(r.DiscNumber),
		PlayCount:   strconv.Itoa(r.PlayCount),
		Location:    r.Location,
	}
	if r.PlayDate != nil {
		n.PlayDate = r.PlayDate.In(time.Local).Format(PlayDateLayout)
	}
	return n
}

// Record decodes the node.
func (n *SongNode) Record() (Record, error) {
	id, err := strconv.Atoi(strings.TrimSpace(n.ID))
	if err != nil {
		return Record{}, fmt.Errorf("song id %q: %w", n.ID, err)
	}
	r := Record{
		ID:          id,
		Title:       n.Title,
		Artist:      n.Artist,
		Album:       n.Album,
		Length:      time.Duration(lenientInt(n.Length)) * time.Second,
		TrackNumber: lenientInt(n.TrackNumber),
		DiscNumber:  lenientInt(n.DiscNumber),
		PlayCount:   lenientInt(n.PlayCount),
		Location:    n.Location,
	}
	if s := strings.TrimSpace(n.PlayDate); s != "" {
		if t, err := time.ParseInLocation(PlayDateLayout, s, time.Local); err == nil {
			r.PlayDate = &t
		}
	}
	return r, nil
}

// SetPlay updates the play statistics of the node.
func (n *SongNode) SetPlay(count int, at time.Time) {
	n.PlayCount = strconv.Itoa(count)
	n.PlayDate = at.In(time.Local).Format(PlayDateLayout)
}

// lenientInt parses s, returning 0 for blank, "null" or invalid values.
func lenientInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
