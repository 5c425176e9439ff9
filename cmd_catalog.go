package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/library"
	"github.com/llehouerou/crate/internal/playlists"
	"github.com/llehouerou/crate/internal/search"
	"github.com/llehouerou/crate/internal/ui/render"
	"github.com/llehouerou/crate/internal/ui/styles"
)

var (
	songColumns   = []int{5, 32, 22, 22, 6, 0}
	albumColumns  = []int{5, 32, 22, 0}
	artistColumns = []int{32, 0}
)

func songsCommand() *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "list every song in the catalog",
		Action: withEnv(func(_ *cli.Context, e *env) error {
			printSongs(e.out, e.store.All())
			return nil
		}),
	}
}

func albumsCommand() *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "list albums",
		Action: withEnv(func(_ *cli.Context, e *env) error {
			printAlbums(e.out, e.index.Albums())
			return nil
		}),
	}
}

func artistsCommand() *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "list artists, sorted ignoring a leading article",
		Action: withEnv(func(_ *cli.Context, e *env) error {
			artists := slices.Clone(e.index.Artists())
			library.SortArtists(artists)
			printArtists(e.out, artists)
			return nil
		}),
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "find the best matching songs, albums and artists",
		ArgsUsage: "TEXT",
		Action: withEnv(func(c *cli.Context, e *env) error {
			text := strings.Join(c.Args().Slice(), " ")

			s := search.NewSearcher(e.store, e.index, e.logger)
			defer s.Stop()
			s.Start(c.Context, text)
			s.Wait()
			res, ok := s.Take()
			if !ok {
				err := c.Context.Err()
				if err == nil {
					err = errors.New("search did not complete")
				}
				return fail(errmsg.OpSearch, err)
			}
			if res.Empty() {
				fmt.Fprintln(e.out, styles.T().S().Muted.Render("No results."))
				return nil
			}

			heading(e.out, "Songs")
			printSongs(e.out, res.Songs)
			heading(e.out, "Albums")
			printAlbums(e.out, res.Albums)
			heading(e.out, "Artists")
			printArtists(e.out, res.Artists)
			return nil
		}),
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "record a play of a song",
		ArgsUsage: "SONG_ID",
		Action: withEnv(func(c *cli.Context, e *env) error {
			id, err := intArg(c, 0)
			if err != nil {
				return failWith(errmsg.OpSongLookup, c.Args().First(), err)
			}
			song, ok := e.store.ByID(id)
			if !ok {
				return failWith(errmsg.OpSongLookup, c.Args().First(), errNoSuchSong)
			}
			e.store.RecordPlay(song)
			fmt.Fprintf(e.out, "%s %s (%s)\n",
				styles.T().S().Playing.Render("▶"),
				render.Sanitize(song.Title),
				plays(song.PlayCount),
			)
			return nil
		}),
	}
}

func nowPlayingCommand() *cli.Command {
	return &cli.Command{
		Name:  "nowplaying",
		Usage: "show the saved now playing list",
		Action: withEnv(func(_ *cli.Context, e *env) error {
			songs := e.store.NowPlaying()
			if len(songs) == 0 {
				fmt.Fprintln(e.out, styles.T().S().Muted.Render("Nothing queued."))
				return nil
			}
			printSongs(e.out, songs)
			return nil
		}),
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "replace the now playing list",
				ArgsUsage: "SONG_ID...",
				Action: withEnv(func(c *cli.Context, e *env) error {
					ids, err := intArgs(c)
					if err != nil {
						return fail(errmsg.OpNowPlaying, err)
					}
					songs := e.store.ByIDs(ids)
					if err := e.store.SaveNowPlaying(songs); err != nil {
						return fail(errmsg.OpNowPlaying, err)
					}
					fmt.Fprintf(e.out, "Now playing list has %s.\n", songCount(len(songs)))
					return nil
				}),
			},
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show the most recent plays",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "show at most `N` plays"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			if e.journal == nil {
				return fail(errmsg.OpHistoryLoad, errHistoryDisabled)
			}
			recent, err := e.journal.RecentPlays(c.Int("limit"))
			if err != nil {
				return fail(errmsg.OpHistoryLoad, err)
			}
			if len(recent) == 0 {
				fmt.Fprintln(e.out, styles.T().S().Muted.Render(playlists.NoPlaysPlaceholder))
				return nil
			}
			for _, p := range recent {
				fmt.Fprintln(e.out, render.Columns([]int{16, 32, 0},
					humanize.Time(p.PlayedAt),
					p.Title,
					p.Artist,
				))
			}

			if run, err := e.journal.LastImport(); err == nil && run != nil {
				fmt.Fprintln(e.out, styles.T().S().Subtle.Render(fmt.Sprintf(
					"last %s: %s songs from %s, %s",
					run.Kind, humanize.Comma(int64(run.Imported)), run.Root, humanize.Time(run.FinishedAt),
				)))
			}
			return nil
		}),
	}
}

var (
	errNoSuchSong      = errors.New("no such song")
	errHistoryDisabled = errors.New("history is disabled or unavailable")
)

func heading(w io.Writer, title string) {
	t := styles.T()
	fmt.Fprintln(w, styles.ApplyBoldGradient(title, t.Primary, t.Secondary))
}

func printSongs(w io.Writer, songs []*catalog.Song) {
	for _, s := range songs {
		fmt.Fprintln(w, render.Columns(songColumns,
			strconv.Itoa(s.ID),
			s.Title,
			s.Artist,
			s.Album,
			s.LengthString(),
			plays(s.PlayCount),
		))
	}
}

func printAlbums(w io.Writer, albums []*library.Album) {
	for _, a := range albums {
		fmt.Fprintln(w, render.Columns(albumColumns,
			strconv.Itoa(a.ID),
			a.Title,
			a.Artist,
			songCount(len(a.Songs)),
		))
	}
}

func printArtists(w io.Writer, artists []*library.Artist) {
	for _, a := range artists {
		n := len(a.Albums)
		fmt.Fprintln(w, render.Columns(artistColumns,
			a.Name,
			fmt.Sprintf("%d %s", n, plural(n, "album", "albums")),
		))
	}
}

func plays(n int) string {
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), plural(n, "play", "plays"))
}

func songCount(n int) string {
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), plural(n, "song", "songs"))
}

func intArg(c *cli.Context, i int) (int, error) {
	s := c.Args().Get(i)
	if s == "" {
		return 0, errors.New("missing id")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}

func intArgs(c *cli.Context) ([]int, error) {
	ids := make([]int, 0, c.NArg())
	for i := range c.NArg() {
		id, err := intArg(c, i)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
