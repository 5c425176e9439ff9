package search

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/library"
)

// SongSource provides the catalog songs.
type SongSource interface {
	All() []*catalog.Song
}

// IndexSource provides derived albums and artists.
type IndexSource interface {
	Albums() []*library.Album
	Artists() []*library.Artist
}

// Searcher runs one search at a time in the background. Starting a search
// cancels the previous one, whose result is dropped. A finished result is
// handed over once through Take.
type Searcher struct {
	songs  SongSource
	index  IndexSource
	logger hclog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	result Result
	ready  bool
}

// NewSearcher creates a searcher. index may be nil to search songs only.
func NewSearcher(songs SongSource, index IndexSource, logger hclog.Logger) *Searcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Searcher{songs: songs, index: index, logger: logger.Named("search")}
}

// Start supersedes any running search with a search for text.
func (s *Searcher) Start(ctx context.Context, text string) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.ready = false
	s.result = Result{}
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		res, err := s.run(ctx, text)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return
		}
		if err != nil {
			s.logger.Debug("search abandoned", "query", text, "error", err)
			return
		}
		s.result = res
		s.ready = true
	}()
}

func (s *Searcher) run(ctx context.Context, text string) (Result, error) {
	var (
		albums  []*library.Album
		artists []*library.Artist
	)
	songs := s.songs.All()
	if s.index != nil {
		albums = s.index.Albums()
		artists = s.index.Artists()
	}
	return search(ctx, text, songs, albums, artists)
}

// Ready reports whether a result is waiting to be taken.
func (s *Searcher) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Take returns the latest result and clears the ready flag.
func (s *Searcher) Take() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Result{}, false
	}
	res := s.result
	s.result = Result{}
	s.ready = false
	return res, true
}

// Wait blocks until the most recently started search has finished.
func (s *Searcher) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop cancels the running search, if any.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
