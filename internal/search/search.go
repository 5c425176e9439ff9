package search

import (
	"context"
	"strings"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/library"
)

// ResultLimit is the number of results kept per category.
const ResultLimit = 3

// Result holds the best matches per category. A category is nil when no
// source list was given for it, and empty when nothing matched.
type Result struct {
	Songs   []*catalog.Song
	Albums  []*library.Album
	Artists []*library.Artist
}

// Empty reports whether no category has a match.
func (r Result) Empty() bool {
	return len(r.Songs) == 0 && len(r.Albums) == 0 && len(r.Artists) == 0
}

// Search ranks each non-nil source against query.
func Search(query string, songs []*catalog.Song, albums []*library.Album, artists []*library.Artist) Result {
	res, _ := search(context.Background(), query, songs, albums, artists)
	return res
}

func search(
	ctx context.Context,
	query string,
	songs []*catalog.Song,
	albums []*library.Album,
	artists []*library.Artist,
) (Result, error) {
	var (
		res Result
		err error
	)
	blank := strings.TrimSpace(query) == ""

	if songs != nil {
		if res.Songs, err = category(ctx, songs, query, blank); err != nil {
			return Result{}, err
		}
	}
	if albums != nil {
		if res.Albums, err = category(ctx, albums, query, blank); err != nil {
			return Result{}, err
		}
	}
	if artists != nil {
		if res.Artists, err = category(ctx, artists, query, blank); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func category[T Item](ctx context.Context, items []T, query string, blank bool) ([]T, error) {
	if blank {
		return []T{}, nil
	}
	return rank(ctx, items, query, ResultLimit)
}
