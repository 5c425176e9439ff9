package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/ui/styles"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "crate",
		Usage: "catalog, search and organize a personal music collection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "read configuration from `FILE` only"},
			&cli.StringFlag{Name: "catalog", Usage: "catalog `FILE` (overrides catalog_path)"},
			&cli.StringFlag{Name: "history", Usage: "play history database `FILE` (overrides history.path)"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to `FILE` (overrides log.file)"},
		},
		Commands: []*cli.Command{
			importCommand(),
			rescanCommand(),
			songsCommand(),
			albumsCommand(),
			artistsCommand(),
			searchCommand(),
			playCommand(),
			playlistsCommand(),
			playlistCommand(),
			nowPlayingCommand(),
			historyCommand(),
		},
		// errors are printed once by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, styles.T().S().Error.Render(err.Error()))
		os.Exit(1)
	}
}

// failure carries a user-facing message and keeps the cause for errors.Is.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

func fail(op errmsg.Op, err error) error {
	return &failure{msg: errmsg.Format(op, err), err: err}
}

func failWith(op errmsg.Op, context string, err error) error {
	return &failure{msg: errmsg.FormatWith(op, context, err), err: err}
}
