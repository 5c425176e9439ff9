package playlists

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/crate/internal/catalog"
)

// SongSource resolves songs for playlists.
type SongSource interface {
	All() []*catalog.Song
	ByIDs(ids []int) []*catalog.Song
}

// AddResult is delivered once an asynchronous Add completes.
type AddResult struct {
	Playlist *Playlist
	Err      error
}

// Registry holds the user playlists stored in the catalog file. Playlists are
// looked up by id through a map; the virtual playlists are built fresh on
// every read.
type Registry struct {
	file   *catalog.File
	songs  SongSource
	logger hclog.Logger

	mu     sync.Mutex
	loaded bool
	user   []*Playlist // ascending id
	byID   map[int]*Playlist

	pending sync.WaitGroup
}

// NewRegistry creates a registry backed by file.
func NewRegistry(file *catalog.File, songs SongSource, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		file:   file,
		songs:  songs,
		logger: logger.Named("playlists"),
	}
}

func (r *Registry) ensureLoaded() {
	if r.loaded {
		return
	}
	r.user = make([]*Playlist, 0)
	r.byID = make(map[int]*Playlist)
	r.loaded = true

	doc, err := r.file.Read()
	if err != nil {
		r.logger.Warn("playlists unreadable, starting empty", "path", r.file.Path(), "error", err)
		return
	}
	for _, node := range doc.Playlists.Items {
		if node.ID < 0 {
			continue
		}
		if _, dup := r.byID[node.ID]; dup {
			r.logger.Warn("duplicate playlist id ignored", "id", node.ID, "title", node.Title)
			continue
		}
		p := r.newStored(node.ID, node.Title)
		p.songs = r.songs.ByIDs(dedupe(node.SongIDs))
		r.user = append(r.user, p)
		r.byID[p.ID] = p
	}
	slices.SortFunc(r.user, func(a, b *Playlist) int { return a.ID - b.ID })
}

func (r *Registry) newStored(id int, title string) *Playlist {
	p := New(id, title)
	p.file = r.file
	return p
}

// All returns the user playlists followed by Most Played and Recently Played.
func (r *Registry) All() []*Playlist {
	r.mu.Lock()
	r.ensureLoaded()
	all := make([]*Playlist, 0, len(r.user)+2)
	all = append(all, r.user...)
	r.mu.Unlock()

	return append(all, newVirtual(MostPlayed, r.songs), newVirtual(RecentlyPlayed, r.songs))
}

// User returns only the stored playlists.
func (r *Registry) User() []*Playlist {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return slices.Clone(r.user)
}

// ByID resolves a playlist id. Sentinel ids return fresh virtual playlists.
func (r *Registry) ByID(id int) (*Playlist, bool) {
	switch id {
	case MostPlayedID:
		return newVirtual(MostPlayed, r.songs), true
	case RecentlyPlayedID:
		return newVirtual(RecentlyPlayed, r.songs), true
	}
	if id < 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	p, ok := r.byID[id]
	return p, ok
}

// ByTitle returns the first playlist whose title matches exactly.
func (r *Registry) ByTitle(title string) (*Playlist, bool) {
	for _, p := range r.All() {
		if p.Title == title {
			return p, true
		}
	}
	return nil, false
}

// Add creates a playlist in the background. The returned channel receives
// exactly one result; callers that don't need it may ignore it.
func (r *Registry) Add(title string) <-chan AddResult {
	ch := make(chan AddResult, 1)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer close(ch)
		p, err := r.add(title)
		if err != nil {
			r.logger.Error("failed to create playlist", "title", title, "error", err)
		}
		ch <- AddResult{Playlist: p, Err: err}
	}()
	return ch
}

// Wait blocks until every pending Add has finished.
func (r *Registry) Wait() {
	r.pending.Wait()
}

func (r *Registry) add(title string) (*Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	id := 0
	if n := len(r.user); n > 0 {
		id = r.user[n-1].ID + 1
	}
	p := r.newStored(id, title)

	err := r.file.Update(func(doc *catalog.Document) error {
		if doc.Playlist(id) != nil {
			return fmt.Errorf("playlist id %d already stored", id)
		}
		doc.Playlists.Items = append(doc.Playlists.Items, catalog.PlaylistNode{ID: id, Title: title})
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.user = append(r.user, p)
	r.byID[id] = p
	return p, nil
}

// Remove deletes a stored playlist. Removing a playlist the registry doesn't
// hold is a no-op. If the write fails the playlist is kept.
func (r *Registry) Remove(p *Playlist) error {
	if p == nil || p.IsVirtual() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	idx := slices.Index(r.user, p)
	if idx < 0 {
		return nil
	}
	r.user = slices.Delete(r.user, idx, idx+1)
	delete(r.byID, p.ID)

	err := r.file.Update(func(doc *catalog.Document) error {
		doc.Playlists.Items = slices.DeleteFunc(doc.Playlists.Items, func(n catalog.PlaylistNode) bool {
			return n.ID == p.ID
		})
		return nil
	})
	if err != nil {
		r.user = slices.Insert(r.user, idx, p)
		r.byID[p.ID] = p
		return err
	}
	return nil
}

// Invalidate forces the next read to reload from disk.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.loaded = false
	r.user, r.byID = nil, nil
	r.mu.Unlock()
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
