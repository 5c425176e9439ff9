package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/importer"
	"github.com/llehouerou/crate/internal/notify"
	"github.com/llehouerou/crate/internal/state"
	"github.com/llehouerou/crate/internal/stderr"
	"github.com/llehouerou/crate/internal/ui/progress"
	"github.com/llehouerou/crate/internal/ui/styles"
)

var plainFlag = &cli.BoolFlag{Name: "plain", Usage: "no progress bar, print a summary only"}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace the catalog with the music files under DIR",
		ArgsUsage: "[DIR]",
		Flags:     []cli.Flag{plainFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			root := c.Args().First()
			if root == "" {
				root = e.cfg.MusicDir
			}
			if root == "" {
				return fail(errmsg.OpImport, errors.New("no directory given and music_dir is not set"))
			}
			im := e.importer()
			return runImport(c, e, "import", root, errmsg.OpImport,
				func(ctx context.Context, sink importer.ProgressSink) (*importer.Result, error) {
					return im.Import(ctx, root, sink)
				})
		}),
	}
}

func rescanCommand() *cli.Command {
	return &cli.Command{
		Name:  "rescan",
		Usage: "add files that appeared in the music directory since the last import",
		Flags: []cli.Flag{plainFlag},
		Action: withEnv(func(c *cli.Context, e *env) error {
			header, err := e.store.Header()
			if err != nil {
				return fail(errmsg.OpRescan, err)
			}
			im := e.importer()
			return runImport(c, e, "rescan", header.Path, errmsg.OpRescan, im.Rescan)
		}),
	}
}

type importFunc func(ctx context.Context, sink importer.ProgressSink) (*importer.Result, error)

func runImport(c *cli.Context, e *env, kind, label string, op errmsg.Op, run importFunc) error {
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	var (
		res *importer.Result
		err error
	)
	if c.Bool("plain") || !isatty.IsTerminal(os.Stdout.Fd()) {
		_, res, err = importer.Start(ctx, func(ctx context.Context) (*importer.Result, error) {
			return run(ctx, nil)
		}).Wait()
	} else {
		res, err = runWithProgress(ctx, cancel, e, label, run)
	}

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(e.out, styles.T().S().Warning.Render(cancelledMessage(kind)))
		return nil
	case err != nil:
		e.notifyImport(notify.ImportFinished(kind, label, 0, 0, err))
		return fail(op, err)
	}

	if e.journal != nil {
		if jerr := e.journal.RecordImport(state.ImportRun{
			Root:     res.Root,
			Kind:     kind,
			Total:    res.Total,
			Imported: res.Imported,
			Added:    res.Added,
			Skipped:  res.Skipped,
			Elapsed:  res.Elapsed,
		}); jerr != nil {
			e.logger.Warn("failed to journal import", "error", jerr)
		}
	}

	e.notifyImport(notify.ImportFinished(kind, res.Root, res.Imported, res.Skipped, nil))
	fmt.Fprintln(e.out, summary(kind, res))
	return nil
}

// notifyImport sends n when import notifications are enabled.
func (e *env) notifyImport(n notify.Notification) {
	if !e.cfg.Notify.Import {
		return
	}
	notifier, err := notify.New()
	if err != nil {
		e.logger.Debug("notifications unavailable", "error", err)
		return
	}
	defer notifier.Close()
	if err := notifier.Notify(n); err != nil {
		e.logger.Warn("failed to send notification", "error", err)
	}
}

// runWithProgress runs the import next to the progress view. The view's
// cancel key cancels ctx; the view quits once the import has returned.
func runWithProgress(
	ctx context.Context,
	cancel context.CancelFunc,
	e *env,
	label string,
	run importFunc,
) (*importer.Result, error) {
	p := tea.NewProgram(progress.New(label, cancel), tea.WithOutput(e.out))

	restore, err := stderr.Capture(e.logger)
	if err != nil {
		e.logger.Debug("stderr capture unavailable", "error", err)
		restore = func() {}
	}
	defer restore()

	var final tea.Model
	var g errgroup.Group
	g.Go(func() error {
		task := importer.Start(ctx, func(ctx context.Context) (*importer.Result, error) {
			return run(ctx, progress.Sink(p))
		})
		_, res, err := task.Wait()
		p.Send(progress.DoneMsg{Result: res, Err: err})
		return nil
	})
	g.Go(func() error {
		m, err := p.Run()
		if err != nil {
			// without a view there is nobody to report progress to
			cancel()
			return err
		}
		final = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view, ok := final.(progress.Model)
	if !ok {
		return nil, fmt.Errorf("unexpected progress model %T", final)
	}
	if view.Cancelled() {
		e.logger.Info("cancel requested from the progress view", "root", label)
	}
	return view.Result()
}

func cancelledMessage(kind string) string {
	return fmt.Sprintf("%s cancelled, catalog unchanged.", capitalize(kind))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func summary(kind string, res *importer.Result) string {
	verb := "Imported"
	if kind == "rescan" {
		verb = "Added"
	}
	line := fmt.Sprintf("%s %s from %s in %s",
		verb,
		songCount(res.Imported),
		res.Root,
		res.Elapsed.Round(10*time.Millisecond),
	)
	if kind == "import" && res.Added != res.Imported {
		line += fmt.Sprintf(" (%s new)", humanize.Comma(int64(res.Added)))
	}
	if res.Skipped > 0 {
		line += ", " + styles.T().S().Warning.Render(
			fmt.Sprintf("%s unreadable %s skipped", humanize.Comma(int64(res.Skipped)), plural(res.Skipped, "file", "files")))
	}
	return styles.T().S().Success.Render(line)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
