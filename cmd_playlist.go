package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/playlists"
	"github.com/llehouerou/crate/internal/ui/render"
	"github.com/llehouerou/crate/internal/ui/styles"
)

var errNoSuchPlaylist = errors.New("no such playlist")

func playlistsCommand() *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "list user playlists followed by Most Played and Recently Played",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "user", Usage: "leave out the virtual playlists"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			all := e.playlists.All()
			if c.Bool("user") {
				all = e.playlists.User()
			}
			for _, p := range all {
				title := styles.T().S().Base.Render(p.Title)
				if p.IsVirtual() {
					title = styles.T().S().Muted.Render(p.Title)
				}
				fmt.Fprintln(e.out, render.Columns([]int{5, 32, 0},
					strconv.Itoa(p.ID),
					title,
					songCount(p.Len()),
				))
			}
			return nil
		}),
	}
}

func playlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "create, edit and show playlists",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "create an empty playlist",
				ArgsUsage: "TITLE",
				Action: withEnv(func(c *cli.Context, e *env) error {
					title := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if title == "" {
						return fail(errmsg.OpPlaylistCreate, errors.New("missing title"))
					}
					res := <-e.playlists.Add(title)
					if res.Err != nil {
						return failWith(errmsg.OpPlaylistCreate, title, res.Err)
					}
					fmt.Fprintf(e.out, "Created playlist %d %q.\n", res.Playlist.ID, res.Playlist.Title)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "delete a playlist",
				ArgsUsage: "PLAYLIST_ID",
				Action: withEnv(func(c *cli.Context, e *env) error {
					p, err := lookupPlaylist(c, e, errmsg.OpPlaylistDelete)
					if err != nil {
						return err
					}
					if p.IsVirtual() {
						return failWith(errmsg.OpPlaylistDelete, p.Title, playlists.ErrVirtualPlaylist)
					}
					if err := e.playlists.Remove(p); err != nil {
						return failWith(errmsg.OpPlaylistDelete, p.Title, err)
					}
					fmt.Fprintf(e.out, "Removed playlist %q.\n", p.Title)
					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "append songs to a playlist",
				ArgsUsage: "PLAYLIST_ID SONG_ID...",
				Action: withEnv(func(c *cli.Context, e *env) error {
					p, err := lookupPlaylist(c, e, errmsg.OpPlaylistAddSong)
					if err != nil {
						return err
					}
					ids, err := intArgs(c)
					if err != nil {
						return fail(errmsg.OpPlaylistAddSong, err)
					}
					added := 0
					for _, id := range ids[1:] {
						song, ok := e.store.ByID(id)
						if !ok {
							return failWith(errmsg.OpPlaylistAddSong, strconv.Itoa(id), errNoSuchSong)
						}
						if p.Contains(id) {
							continue
						}
						if err := p.AddSong(song); err != nil {
							return failWith(errmsg.OpPlaylistAddSong, p.Title, err)
						}
						added++
					}
					fmt.Fprintf(e.out, "Added %s to %q.\n", songCount(added), p.Title)
					return nil
				}),
			},
			{
				Name:      "drop",
				Usage:     "remove a song from a playlist",
				ArgsUsage: "PLAYLIST_ID SONG_ID",
				Action: withEnv(func(c *cli.Context, e *env) error {
					p, err := lookupPlaylist(c, e, errmsg.OpPlaylistRemoveSong)
					if err != nil {
						return err
					}
					id, err := intArg(c, 1)
					if err != nil {
						return fail(errmsg.OpPlaylistRemoveSong, err)
					}
					if err := p.RemoveSong(id); err != nil {
						return failWith(errmsg.OpPlaylistRemoveSong, p.Title, err)
					}
					fmt.Fprintf(e.out, "Removed song %d from %q.\n", id, p.Title)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "list the songs of a playlist",
				ArgsUsage: "PLAYLIST_ID",
				Action: withEnv(func(c *cli.Context, e *env) error {
					p, err := lookupPlaylist(c, e, errmsg.OpPlaylistLookup)
					if err != nil {
						return err
					}
					heading(e.out, p.Title)
					songs := p.Songs()
					if len(songs) == 0 {
						fmt.Fprintln(e.out, styles.T().S().Muted.Render(p.Placeholder))
						return nil
					}
					printSongs(e.out, songs)
					return nil
				}),
			},
		},
	}
}

func lookupPlaylist(c *cli.Context, e *env, op errmsg.Op) (*playlists.Playlist, error) {
	id, err := intArg(c, 0)
	if err != nil {
		return nil, fail(op, err)
	}
	p, ok := e.playlists.ByID(id)
	if !ok {
		return nil, failWith(op, c.Args().First(), errNoSuchPlaylist)
	}
	return p, nil
}
